package api

import (
	"context"
	"fmt"
	"net/http"
)

// Chat sends a query. The backend files it under the user's latest session, creating one if needed.
func (c *Client) Chat(ctx context.Context, query string) (*ChatReply, error) {
	reply := &ChatReply{}
	if err := c.doJSON(ctx, http.MethodPost, "/chat", &chatRequest{Query: query}, true, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// ListChatHistory returns every stored query/response of the user, newest first.
func (c *Client) ListChatHistory(ctx context.Context) ([]*Message, error) {
	var messages []*Message
	if err := c.doJSON(ctx, http.MethodGet, "/chat-history", nil, true, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteChatHistory deletes one stored query/response.
func (c *Client) DeleteChatHistory(ctx context.Context, id int64) (string, error) {
	response := &statusMessage{}
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/chat-history/%d", id), nil, true, response); err != nil {
		return "", err
	}
	return response.Message, nil
}
