package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/pdfchat/store"
)

func newStorage(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	storage := newStorage(t)
	session := NewSession(storage)
	require.NoError(t, session.Restore())
	assert.False(t, session.Active())

	require.NoError(t, session.Begin("T"))
	assert.Equal(t, "T", session.Token())
	value, ok, err := storage.GetItem(TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T", value)

	require.NoError(t, session.End())
	assert.False(t, session.Active())
	_, ok, err = storage.GetItem(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRestore(t *testing.T) {
	storage := newStorage(t)
	require.NoError(t, storage.SetItem(TokenKey, "saved"))

	session := NewSession(storage)
	require.NoError(t, session.Restore())
	assert.Equal(t, "saved", session.Token())
}

func TestSessionBeginRejectsEmptyToken(t *testing.T) {
	session := NewSession(newStorage(t))
	assert.Error(t, session.Begin(""))
	assert.False(t, session.Active())
}

func TestSessionRevoke(t *testing.T) {
	storage := newStorage(t)
	session := NewSession(storage)
	require.NoError(t, session.Begin("old"))
	require.NoError(t, session.Begin("new"))

	require.NoError(t, session.Revoke("old"))
	assert.Equal(t, "new", session.Token(), "a stale rejection keeps the newer token")

	require.NoError(t, session.Revoke("new"))
	assert.False(t, session.Active())
	_, ok, err := storage.GetItem(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
