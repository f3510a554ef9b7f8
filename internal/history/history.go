package history

import (
	"strings"
	"sync"

	"github.com/malonaz/pdfchat/internal/debug"
)

// Backend persists history entries. *store.Store implements it.
type Backend interface {
	LoadHistory(limit int) ([]string, error)
	AppendHistory(entry string, limit int) error
}

// History manages chat input recall with optional persistence.
type History struct {
	mu      sync.Mutex
	backend Backend
	maxSize int
	entries []string
	index   int    // Current position in history (-1 means new input)
	current string // Stores current input when navigating history
}

// New creates a History holding at most maxSize entries and loads existing entries from backend.
// A nil backend keeps history in memory only.
func New(backend Backend, maxSize int) *History {
	if maxSize <= 0 {
		maxSize = 1
	}
	h := &History{
		backend: backend,
		maxSize: maxSize,
		index:   -1,
	}
	if backend != nil {
		entries, err := backend.LoadHistory(maxSize)
		if err != nil {
			debug.GetLogger().Warn("loading input history", "error", err)
		}
		h.entries = entries
	}
	return h
}

// Add adds a new entry to history.
func (h *History) Add(entry string) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return
	}

	h.mu.Lock()
	h.index = -1
	h.current = ""
	// Don't add duplicates of the last entry
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry {
		h.mu.Unlock()
		return
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
	h.mu.Unlock()

	if h.backend != nil {
		if err := h.backend.AppendHistory(entry, h.maxSize); err != nil {
			debug.GetLogger().Warn("persisting input history", "error", err)
		}
	}
}

// Previous returns the previous entry in history.
// currentInput is saved when navigation starts so Next can restore it.
func (h *History) Previous(currentInput string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return "", false
	}

	switch {
	case h.index == -1:
		h.current = currentInput
		h.index = len(h.entries) - 1
	case h.index > 0:
		h.index--
	default:
		return h.entries[0], false
	}
	return h.entries[h.index], true
}

// Next returns the next entry in history, toward the present.
func (h *History) Next() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == -1 {
		return "", false
	}

	h.index++
	if h.index >= len(h.entries) {
		h.index = -1
		return h.current, true
	}
	return h.entries[h.index], true
}

// Reset resets the navigation index.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = -1
	h.current = ""
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of the held entries, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}
