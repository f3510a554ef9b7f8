package workspace

import (
	"context"

	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/debug"
	"github.com/malonaz/pdfchat/internal/types"
)

// ListSessionsOutcome is the result of fetching the session list.
type ListSessionsOutcome struct {
	stamp
	Sessions []*api.ChatSession
	Err      error
}

func (o *ListSessionsOutcome) requestErr() error { return o.Err }

func (o *ListSessionsOutcome) apply(w *Workspace) bool {
	if !w.sameIdentity(o.stamp) {
		return false
	}
	w.handleUnauthorized(o.Err)
	return true
}

// ListSessions returns the task fetching the user's sessions.
func (w *Workspace) ListSessions() Task {
	s := w.stamp()
	backend := w.backend
	return func(ctx context.Context) Outcome {
		sessions, err := backend.ListChatSessions(ctx)
		return &ListSessionsOutcome{stamp: s, Sessions: sessions, Err: err}
	}
}

// NewSessionOutcome is the result of creating a session.
type NewSessionOutcome struct {
	stamp
	Session *api.ChatSession
	Err     error
}

func (o *NewSessionOutcome) requestErr() error { return o.Err }

func (o *NewSessionOutcome) apply(w *Workspace) bool {
	if !w.sameView(o.stamp) {
		return false
	}
	if o.Err != nil {
		if !w.handleUnauthorized(o.Err) {
			debug.GetLogger().Error("creating session", "error", o.Err)
		}
		return true
	}
	w.selectedID = o.Session.ID
	w.transcript.Clear()
	return true
}

// NewSession returns the task creating an empty session and viewing it.
// Outcomes of operations issued before it are dropped.
func (w *Workspace) NewSession() Task {
	s := w.advanceView()
	backend := w.backend
	return func(ctx context.Context) Outcome {
		session, err := backend.CreateChatSession(ctx)
		return &NewSessionOutcome{stamp: s, Session: session, Err: err}
	}
}

// SelectSessionOutcome is the result of loading a session's messages.
type SelectSessionOutcome struct {
	stamp
	ID       int64
	Messages []*api.Message
	Err      error
}

func (o *SelectSessionOutcome) requestErr() error { return o.Err }

func (o *SelectSessionOutcome) apply(w *Workspace) bool {
	if !w.sameView(o.stamp) {
		return false
	}
	if o.Err != nil {
		if !w.handleUnauthorized(o.Err) {
			debug.GetLogger().Error("loading session messages", "session_id", o.ID, "error", o.Err)
		}
		return true
	}
	entries := make([]types.Entry, 0, len(o.Messages))
	for _, m := range o.Messages {
		entries = append(entries, types.Entry{User: m.Message, Bot: m.Response})
	}
	w.selectedID = o.ID
	w.transcript.Replace(entries)
	return true
}

// SelectSession returns the task loading session id into the transcript.
// Outcomes of operations issued before it are dropped.
func (w *Workspace) SelectSession(id int64) Task {
	s := w.advanceView()
	backend := w.backend
	return func(ctx context.Context) Outcome {
		messages, err := backend.ListSessionMessages(ctx, id)
		return &SelectSessionOutcome{stamp: s, ID: id, Messages: messages, Err: err}
	}
}

// DeleteSessionOutcome is the result of deleting a session.
type DeleteSessionOutcome struct {
	stamp
	ID  int64
	Err error
}

func (o *DeleteSessionOutcome) requestErr() error { return o.Err }

func (o *DeleteSessionOutcome) apply(w *Workspace) bool {
	if !w.sameIdentity(o.stamp) {
		return false
	}
	if o.Err != nil {
		if !w.handleUnauthorized(o.Err) {
			debug.GetLogger().Error("deleting session", "session_id", o.ID, "error", o.Err)
		}
		return true
	}
	if w.selectedID == o.ID {
		w.view++
		w.selectedID = 0
		w.transcript.Clear()
	}
	return true
}

// DeleteSession returns the task deleting session id.
func (w *Workspace) DeleteSession(id int64) Task {
	s := w.stamp()
	backend := w.backend
	return func(ctx context.Context) Outcome {
		return &DeleteSessionOutcome{stamp: s, ID: id, Err: backend.DeleteChatSession(ctx, id)}
	}
}

// ErrorMessage returns the text to show for a failed outcome, or "" on success.
func ErrorMessage(outcome Outcome) string {
	switch o := outcome.(type) {
	case *AuthOutcome:
		return o.Message()
	case *UploadOutcome:
		if o.Err != nil {
			return o.Message
		}
	case *ChatOutcome:
		if o.Err != nil {
			return api.ErrorText(o.Err, GenericFailed)
		}
	case *ListSessionsOutcome:
		if o.Err != nil {
			return api.ErrorText(o.Err, "Could not load chats.")
		}
	case *NewSessionOutcome:
		if o.Err != nil {
			return api.ErrorText(o.Err, "Could not create a new chat.")
		}
	case *SelectSessionOutcome:
		if o.Err != nil {
			return api.ErrorText(o.Err, "Could not load the chat.")
		}
	case *DeleteSessionOutcome:
		if o.Err != nil {
			return api.ErrorText(o.Err, "Could not delete the chat.")
		}
	}
	return ""
}
