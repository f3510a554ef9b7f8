package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// naiveLayout is how the backend serializes datetimes without a zone.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a backend datetime.
// It accepts RFC 3339 and zone-less ISO 8601, which is read as UTC.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "timestamp is not a string")
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(naiveLayout, raw, time.UTC)
	if err != nil {
		return errors.Wrapf(err, "parsing timestamp %q", raw)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Token is issued by login and signup.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ChatSession is a server-side conversation grouping.
type ChatSession struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt Timestamp `json:"created_at"`
}

// Message is one stored query/response pair.
type Message struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp Timestamp `json:"timestamp"`
}

// ChatReply is the backend's answer to a query.
type ChatReply struct {
	Response     string `json:"response"`
	SessionID    int64  `json:"session_id"`
	SessionTitle string `json:"session_title"`
}

type statusMessage struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type chatRequest struct {
	Query string `json:"query"`
}
