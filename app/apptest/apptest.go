// Package apptest builds an app.Provider against a fake backend for command tests.
package apptest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/internal/api/apitest"
)

// New returns a provider whose configuration and database live in a temporary directory
// and whose backend is server. The App is closed when the test ends.
func New(t testing.TB, server *apitest.Server) *app.Provider {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	bytes, err := json.Marshal(map[string]any{
		"database": filepath.Join(dir, "pdfchat.db"),
		"log_file": filepath.Join(dir, "debug.log"),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, bytes, 0o644))

	provider := app.NewProvider(&app.Opts{ConfigPath: path, BackendURL: server.URL})
	t.Cleanup(func() { provider.Close() })
	return provider
}

// LoggedIn returns a provider already holding a valid token for email.
func LoggedIn(t testing.TB, server *apitest.Server, email string) *app.Provider {
	t.Helper()
	provider := New(t, server)
	a, err := provider.Get()
	require.NoError(t, err)
	require.NoError(t, a.Session.Begin(server.IssueToken(email)))
	return provider
}
