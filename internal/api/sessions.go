package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListChatSessions returns the user's sessions, newest first.
func (c *Client) ListChatSessions(ctx context.Context) ([]*ChatSession, error) {
	var sessions []*ChatSession
	if err := c.doJSON(ctx, http.MethodGet, "/chat-sessions", nil, true, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateChatSession starts an empty session.
func (c *Client) CreateChatSession(ctx context.Context) (*ChatSession, error) {
	session := &ChatSession{}
	if err := c.doJSON(ctx, http.MethodPost, "/chat-sessions", struct{}{}, true, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteChatSession deletes a session and its messages.
func (c *Client) DeleteChatSession(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/chat-sessions/%d", id), nil, true, nil)
}

// ListSessionMessages returns a session's messages, oldest first.
func (c *Client) ListSessionMessages(ctx context.Context, id int64) ([]*Message, error) {
	var messages []*Message
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/chat-sessions/%d/messages", id), nil, true, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
