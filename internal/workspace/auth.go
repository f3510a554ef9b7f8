package workspace

import (
	"context"
	"strings"

	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/debug"
)

// AuthOutcome is the result of a login or signup.
type AuthOutcome struct {
	stamp
	Signup bool
	Token  string
	Err    error
}

// Message is the error text to show on the form, or "" on success.
func (o *AuthOutcome) Message() string {
	if o.Err == nil {
		return ""
	}
	if o.Signup {
		return api.ErrorText(o.Err, SignupFailed)
	}
	return api.ErrorText(o.Err, LoginFailed)
}

// Login and signup are unauthenticated requests.
func (o *AuthOutcome) requestErr() error { return nil }

func (o *AuthOutcome) apply(w *Workspace) bool {
	if !w.sameIdentity(o.stamp) {
		return false
	}
	if o.Err != nil {
		return true
	}
	if err := w.session.Begin(o.Token); err != nil {
		debug.GetLogger().Warn("persisting session", "error", err)
	}
	w.reset()
	w.showSignup = false
	return true
}

// Login returns the task logging in with email and password.
// It returns nil, and nothing is sent, when either field is empty.
func (w *Workspace) Login(email, password string) Task {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}
	s := w.stamp()
	backend := w.backend
	return func(ctx context.Context) Outcome {
		token, err := backend.Login(ctx, email, password)
		if err != nil {
			return &AuthOutcome{stamp: s, Err: err}
		}
		return &AuthOutcome{stamp: s, Token: token.AccessToken}
	}
}

// Signup returns the task registering a user.
// It returns nil, and nothing is sent, when any field is empty.
func (w *Workspace) Signup(username, email, password string) Task {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil
	}
	s := w.stamp()
	backend := w.backend
	return func(ctx context.Context) Outcome {
		token, err := backend.Signup(ctx, username, email, password)
		if err != nil {
			return &AuthOutcome{stamp: s, Signup: true, Err: err}
		}
		return &AuthOutcome{stamp: s, Signup: true, Token: token.AccessToken}
	}
}
