package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/internal/api/apitest"
)

func TestCommandTree(t *testing.T) {
	opts := &app.Opts{}
	root := newRootCmd(opts, app.NewProvider(opts))
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"login", "signup", "logout", "chat", "ask", "upload", "sessions", "history"} {
		assert.Contains(t, names, want)
	}
}

func TestGlobalFlags(t *testing.T) {
	server := apitest.New(t)
	server.AddUser("alice", "a@b.com", "x")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	raw, err := json.Marshal(map[string]any{
		"backend_url": "http://127.0.0.1:1",
		"database":    filepath.Join(dir, "pdfchat.db"),
		"log_file":    filepath.Join(dir, "debug.log"),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	opts := &app.Opts{}
	provider := app.NewProvider(opts)
	t.Cleanup(func() { provider.Close() })
	root := newRootCmd(opts, provider)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "--backend", server.URL, "login", "-e", "a@b.com", "-p", "x"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	a, err := provider.Get()
	require.NoError(t, err)
	assert.Equal(t, server.URL, a.Config.BackendURL)
	assert.NotEmpty(t, a.Session.Token())
	assert.Equal(t, 1, server.Calls("POST /login"))
}
