package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Error is a non-2xx backend response.
type Error struct {
	// StatusCode is the HTTP status.
	StatusCode int
	// Message is always human-readable: the backend detail when present, the status text otherwise.
	Message string
	// Code is an optional machine-readable code.
	Code string

	// detailed is set when Message came from the backend.
	detailed bool
}

// Error implements error.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// parseError builds an Error from a response body.
// FastAPI sends {"detail": "..."} for handled errors and {"detail": [{"msg", "type", "loc"}]} on validation failures.
func parseError(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode}
	if gjson.ValidBytes(body) {
		result := gjson.ParseBytes(body)
		detail := result.Get("detail")
		switch {
		case detail.Type == gjson.String:
			e.Message = detail.String()
		case detail.IsArray():
			var messages []string
			detail.ForEach(func(_, item gjson.Result) bool {
				if msg := item.Get("msg").String(); msg != "" {
					messages = append(messages, msg)
				}
				if e.Code == "" {
					e.Code = item.Get("type").String()
				}
				return true
			})
			e.Message = strings.Join(messages, "; ")
		}
		if code := result.Get("code"); code.Exists() {
			e.Code = code.String()
		}
	}
	e.detailed = e.Message != ""
	if !e.detailed {
		e.Message = http.StatusText(statusCode)
		if e.Message == "" {
			e.Message = fmt.Sprintf("unexpected status %d", statusCode)
		}
	}
	return e
}

// ErrorText returns the backend-supplied detail carried by err, or fallback.
func ErrorText(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.detailed {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
