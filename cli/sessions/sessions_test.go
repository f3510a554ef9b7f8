package sessions

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/app/apptest"
	"github.com/malonaz/pdfchat/internal/api/apitest"
)

const email = "a@b.com"

func execute(t *testing.T, provider *app.Provider, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewCmd(provider)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList(t *testing.T) {
	server := apitest.New(t)
	provider := apptest.LoggedIn(t, server, email)
	server.AddSession(email, "Older")
	server.AddSession(email, "Newer")
	server.AddSession("other@b.com", "Not mine")

	out, err := execute(t, provider, "list", "--template", "{{ .Title | upper }} {{ .Created }}")
	require.NoError(t, err)
	assert.Equal(t, "NEWER 01.05.2024 10:02\nOLDER 01.05.2024 10:01\n", out)

	_, err = execute(t, provider, "list", "--template", "{{ .Missing")
	assert.ErrorContains(t, err, "parsing template")
}

func TestListRequiresLogin(t *testing.T) {
	server := apitest.New(t)
	_, err := execute(t, apptest.New(t, server), "list")
	assert.ErrorIs(t, err, app.ErrNotLoggedIn)
}

func TestNew(t *testing.T) {
	server := apitest.New(t)
	provider := apptest.LoggedIn(t, server, email)

	out, err := execute(t, provider, "new")
	require.NoError(t, err)
	ids := server.SessionIDs(email)
	require.Len(t, ids, 1)
	assert.Equal(t, "1\n", out)
}

func TestShow(t *testing.T) {
	server := apitest.New(t)
	provider := apptest.LoggedIn(t, server, email)
	id := server.AddSession(email, "Paper")
	server.AddMessage(id, "q1", "a1")
	server.AddMessage(id, "q2", "a2")

	out, err := execute(t, provider, "show", "--raw", "1")
	require.NoError(t, err)
	assert.Equal(t, "> q1\na1\n\n> q2\na2\n\n", out)

	out, err = execute(t, provider, "show", "1")
	require.NoError(t, err)
	assert.Empty(t, out, "rendered transcripts go to the terminal printers")

	_, err = execute(t, provider, "show", "99")
	assert.EqualError(t, err, "Session not found")

	_, err = execute(t, provider, "show", "abc")
	assert.EqualError(t, err, `invalid session id "abc"`)
}

func TestDelete(t *testing.T) {
	server := apitest.New(t)
	provider := apptest.LoggedIn(t, server, email)
	server.AddSession(email, "First")
	server.AddSession(email, "Second")
	keep := server.AddSession(email, "Keep")

	_, err := execute(t, provider, "delete", "--yes", "1", "2", "1")
	require.NoError(t, err)
	assert.Equal(t, []int64{keep}, server.SessionIDs(email))
	assert.Equal(t, 2, server.Calls("DELETE /chat-sessions/:id"), "repeated ids are deleted once")
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	server := apitest.New(t)
	provider := apptest.LoggedIn(t, server, email)
	id := server.AddSession(email, "First")

	original := confirm
	t.Cleanup(func() { confirm = original })
	var asked string
	confirm = func(question string) bool {
		asked = question
		return false
	}

	_, err := execute(t, provider, "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "Delete 1 session(s)?", asked)
	assert.Equal(t, []int64{id}, server.SessionIDs(email))
	assert.Zero(t, server.Calls("DELETE /chat-sessions/:id"))
}

func TestDeleteFailures(t *testing.T) {
	server := apitest.New(t)
	provider := apptest.LoggedIn(t, server, email)
	server.AddSession(email, "First")

	_, err := execute(t, provider, "delete", "-y", "99", "1")
	assert.EqualError(t, err, "1 of 2 deletions failed")
	assert.Empty(t, server.SessionIDs(email))

	server.AddSession(email, "Second")
	server.Fail("DELETE /chat-sessions/:id", http.StatusUnauthorized, "Could not validate credentials")
	_, err = execute(t, provider, "delete", "-y", "2")
	assert.ErrorIs(t, err, app.ErrNotLoggedIn)
}
