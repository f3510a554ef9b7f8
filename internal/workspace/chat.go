package workspace

import (
	"context"
	"strings"

	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/types"
)

// ChatOutcome is the result of a query.
type ChatOutcome struct {
	stamp
	Query string
	Reply *api.ChatReply
	Err   error
}

func (o *ChatOutcome) requestErr() error { return o.Err }

func (o *ChatOutcome) apply(w *Workspace) bool {
	if !w.sameView(o.stamp) {
		return false
	}
	if o.Err != nil {
		if w.handleUnauthorized(o.Err) {
			return true
		}
		w.transcript.Append(types.Entry{
			User: o.Query,
			Bot:  "Error: " + api.ErrorText(o.Err, GenericFailed),
			Err:  true,
		})
		return true
	}
	w.transcript.Append(types.Entry{User: o.Query, Bot: o.Reply.Response})
	w.selectedID = o.Reply.SessionID
	return true
}

// Chat returns the task sending query. It returns nil for blank queries.
func (w *Workspace) Chat(query string) Task {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	s := w.stamp()
	backend := w.backend
	return func(ctx context.Context) Outcome {
		reply, err := backend.Chat(ctx, query)
		return &ChatOutcome{stamp: s, Query: query, Reply: reply, Err: err}
	}
}
