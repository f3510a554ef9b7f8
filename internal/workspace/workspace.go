// Package workspace holds the client state shared by every view and the operations that change it.
//
// Operations run in two phases. Constructors such as Chat or SelectSession capture the current
// epochs and return a Task; the Task performs the network call off the event loop and yields an
// Outcome; Apply folds the Outcome into the state on the event loop. Outcomes issued before the
// viewed session or the identity changed are dropped instead of applied.
package workspace

import (
	"context"

	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/auth"
	"github.com/malonaz/pdfchat/internal/debug"
	"github.com/malonaz/pdfchat/internal/types"
)

// Fallback messages shown when the backend gives no detail.
const (
	LoginFailed   = "Login failed."
	SignupFailed  = "Sign up failed."
	UploadFailed  = "Upload failed."
	GenericFailed = "Something went wrong."
)

// Backend is the subset of the backend client the workspace drives.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.Token, error)
	Signup(ctx context.Context, username, email, password string) (*api.Token, error)
	UploadPDF(ctx context.Context, path string) (string, error)
	Chat(ctx context.Context, query string) (*api.ChatReply, error)
	ListChatSessions(ctx context.Context) ([]*api.ChatSession, error)
	CreateChatSession(ctx context.Context) (*api.ChatSession, error)
	DeleteChatSession(ctx context.Context, id int64) error
	ListSessionMessages(ctx context.Context, id int64) ([]*api.Message, error)
}

// Config tunes upload validation.
type Config struct {
	// MaxUploadBytes rejects larger files before sending. Zero means no limit.
	MaxUploadBytes int64
	// SkipValidation sends files without parsing them locally.
	SkipValidation bool
}

// Task performs the network half of an operation.
type Task func(ctx context.Context) Outcome

// Outcome is the result of a Task, folded into the workspace by Apply.
type Outcome interface {
	apply(w *Workspace) bool
	issued() stamp
	// requestErr is the error of the authenticated request behind the outcome, if any.
	requestErr() error
}

// stamp records the epochs an operation was issued under.
type stamp struct {
	generation uint64
	view       uint64
}

func (s stamp) issued() stamp { return s }

// Workspace is the root client state. It is not safe for concurrent use:
// only Tasks may run on other goroutines.
type Workspace struct {
	backend    Backend
	session    *auth.Session
	config     Config
	transcript *types.Transcript

	selectedID    int64
	uploadMessage string
	showSignup    bool

	// generation advances when the identity changes, view when the viewed session changes.
	generation uint64
	view       uint64
}

// New returns a workspace driving backend as the identity held by session.
func New(backend Backend, session *auth.Session, config Config) *Workspace {
	return &Workspace{
		backend:    backend,
		session:    session,
		config:     config,
		transcript: types.NewTranscript(),
	}
}

// Apply folds an outcome into the state. It returns false when the outcome was stale and dropped.
func (w *Workspace) Apply(outcome Outcome) bool {
	if outcome == nil {
		return false
	}
	// The client revokes a rejected token as soon as the response arrives, so a 401 on an
	// outcome of the current identity logs out even when the outcome is stale for the view.
	if w.sameIdentity(outcome.issued()) && !w.session.Active() && api.IsUnauthorized(outcome.requestErr()) {
		debug.GetLogger().Info("backend rejected the session, logging out")
		w.Logout()
		return true
	}
	return outcome.apply(w)
}

// Run performs a task and applies its outcome in the calling goroutine.
func (w *Workspace) Run(ctx context.Context, task Task) Outcome {
	if task == nil {
		return nil
	}
	outcome := task(ctx)
	w.Apply(outcome)
	return outcome
}

// Authenticated reports whether a token is held.
func (w *Workspace) Authenticated() bool { return w.session.Active() }

// Transcript returns the entries of the viewed session.
func (w *Workspace) Transcript() []types.Entry { return w.transcript.Entries() }

// LastEntry returns the newest transcript entry.
func (w *Workspace) LastEntry() (types.Entry, bool) { return w.transcript.Last() }

// SelectedSessionID returns the viewed session, or 0 when none is selected.
func (w *Workspace) SelectedSessionID() int64 { return w.selectedID }

// UploadMessage returns the status of the latest upload attempt.
func (w *Workspace) UploadMessage() string { return w.uploadMessage }

// ShowSignup reports whether the signup form is shown instead of the login form.
func (w *Workspace) ShowSignup() bool { return w.showSignup }

// SetShowSignup switches between the login and signup forms.
func (w *Workspace) SetShowSignup(show bool) { w.showSignup = show }

// Logout ends the session and clears every piece of per-user state.
func (w *Workspace) Logout() {
	if err := w.session.End(); err != nil {
		debug.GetLogger().Warn("ending session", "error", err)
	}
	w.reset()
}

func (w *Workspace) reset() {
	w.generation++
	w.view++
	w.transcript.Clear()
	w.selectedID = 0
	w.uploadMessage = ""
}

func (w *Workspace) stamp() stamp {
	return stamp{generation: w.generation, view: w.view}
}

// advanceView marks the start of a view change and returns the new stamp.
func (w *Workspace) advanceView() stamp {
	w.view++
	return w.stamp()
}

func (w *Workspace) sameIdentity(s stamp) bool { return s.generation == w.generation }

func (w *Workspace) sameView(s stamp) bool { return s.generation == w.generation && s.view == w.view }

// handleUnauthorized logs out when err is a 401. It reports whether it did.
func (w *Workspace) handleUnauthorized(err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	debug.GetLogger().Info("backend rejected the session, logging out")
	w.Logout()
	return true
}
