package auth

import (
	"sync"

	"github.com/pkg/errors"
)

// TokenKey is the local storage key holding the bearer token.
const TokenKey = "token"

// Storage is client-local key/value storage. *store.Store implements it.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Session is the authenticated identity of the client.
// At most one token is active at a time. It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	storage Storage
	token   string
}

// NewSession returns an inactive session backed by storage.
func NewSession(storage Storage) *Session {
	return &Session{storage: storage}
}

// Restore loads a previously persisted token, if any.
func (s *Session) Restore() error {
	token, ok, err := s.storage.GetItem(TokenKey)
	if err != nil {
		return errors.Wrap(err, "restoring token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.token = token
	} else {
		s.token = ""
	}
	return nil
}

// Begin activates token and persists it, replacing any previous token.
// The token is active in memory even when persisting fails.
func (s *Session) Begin(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if err := s.storage.SetItem(TokenKey, token); err != nil {
		return errors.Wrap(err, "persisting token")
	}
	return nil
}

// End clears the active token and removes it from storage.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.end()
}

// Revoke ends the session only if token is still the active one.
// A rejection of an older token never clears a newer login.
func (s *Session) Revoke(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || s.token != token {
		return nil
	}
	return s.end()
}

func (s *Session) end() error {
	s.token = ""
	if err := s.storage.RemoveItem(TokenKey); err != nil {
		return errors.Wrap(err, "removing token")
	}
	return nil
}

// Token returns the active token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Active reports whether a token is held.
func (s *Session) Active() bool {
	return s.Token() != ""
}
