package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	bytes, err := json.Marshal(map[string]any{
		"backend_url": "http://localhost:8000",
		"database":    filepath.Join(dir, "pdfchat.db"),
		"log_file":    filepath.Join(dir, "debug.log"),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, bytes, 0o644))
	return path
}

func TestNewAppRestoresToken(t *testing.T) {
	path := writeConfig(t)

	a, err := NewApp(&Opts{ConfigPath: path})
	require.NoError(t, err)
	assert.ErrorIs(t, a.RequireLogin(), ErrNotLoggedIn)
	require.NoError(t, a.Session.Begin("T"))
	require.NoError(t, a.Close())

	a, err = NewApp(&Opts{ConfigPath: path})
	require.NoError(t, err)
	defer a.Close()
	assert.NoError(t, a.RequireLogin())
	assert.Equal(t, "T", a.Session.Token())
}

func TestBackendOverride(t *testing.T) {
	path := writeConfig(t)

	a, err := NewApp(&Opts{ConfigPath: path, BackendURL: "https://chat.example.com/"})
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, "https://chat.example.com", a.Config.BackendURL)
	assert.Equal(t, "https://chat.example.com", a.Client.BaseURL())

	_, err = NewApp(&Opts{ConfigPath: path, BackendURL: "chat.example.com"})
	assert.Error(t, err)
}

func TestProviderBuildsOnce(t *testing.T) {
	p := NewProvider(&Opts{ConfigPath: writeConfig(t)})
	first, err := p.Get()
	require.NoError(t, err)
	second, err := p.Get()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.NoError(t, p.Close())

	assert.NoError(t, NewProvider(&Opts{}).Close(), "closing an unused provider is a no-op")
}

func TestHistoryIsPersisted(t *testing.T) {
	path := writeConfig(t)
	a, err := NewApp(&Opts{ConfigPath: path})
	require.NoError(t, err)
	a.History().Add("what is chapter two about?")
	require.NoError(t, a.Close())

	a, err = NewApp(&Opts{ConfigPath: path})
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, []string{"what is chapter two about?"}, a.History().Entries())
}
