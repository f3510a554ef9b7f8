package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/malonaz/pdfchat/internal/debug"
)

const (
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// Credentials supplies the bearer token and is told when the backend rejects it.
// *auth.Session implements it.
type Credentials interface {
	Token() string
	Revoke(token string) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// Client calls the chat backend.
type Client struct {
	baseURL     string
	credentials Credentials
	httpClient  *http.Client
}

// New returns a client for the backend at baseURL.
func New(baseURL string, credentials Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		credentials: credentials,
		httpClient:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method        string
	path          string
	body          io.Reader
	contentType   string
	authenticated bool
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, authenticated bool, out any) error {
	req := request{method: method, path: path, authenticated: authenticated}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		req.body = bytes.NewReader(body)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	logger := debug.GetLogger()

	var token string
	if r.authenticated {
		token = c.credentials.Token()
		if token == "" {
			return &Error{StatusCode: http.StatusUnauthorized, Message: "Not authenticated"}
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("backend request failed", "request_id", requestID, "method", r.method, "path", r.path, "error", err)
		return errors.Wrapf(err, "%s %s", r.method, r.path)
	}
	defer resp.Body.Close()
	logger.Debug("backend request", "request_id", requestID, "method", r.method, "path", r.path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := parseError(resp.StatusCode, body)
		if apiErr.StatusCode == http.StatusUnauthorized && token != "" {
			if err := c.credentials.Revoke(token); err != nil {
				logger.Warn("revoking rejected token", "request_id", requestID, "error", err)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", r.method, r.path)
	}
	return nil
}
