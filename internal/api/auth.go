package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	token := &Token{}
	if err := c.doJSON(ctx, http.MethodPost, "/login", &loginRequest{Email: email, Password: password}, false, token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, errors.New("login response carries no access token")
	}
	return token, nil
}

// Signup registers a user and returns its bearer token.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*Token, error) {
	token := &Token{}
	request := &signupRequest{Username: username, Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/signup", request, false, token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, errors.New("signup response carries no access token")
	}
	return token, nil
}
