package history

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"

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
	id := server.AddSession(email, "Paper")
	server.AddMessage(id, "first   question", "a1")
	server.AddMessage(id, "second\nquestion", "a2")

	out, err := execute(t, provider, "list")
	require.NoError(t, err)
	assert.Equal(t, ""+
		"3      01.05.2024 10:03  second question\n"+
		"2      01.05.2024 10:02  first question\n", out)

	out, err = execute(t, provider, "list", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, "3      01.05.2024 10:03  second question\n", out)
}

func TestDelete(t *testing.T) {
	server := apitest.New(t)
	provider := apptest.LoggedIn(t, server, email)
	id := server.AddSession(email, "Paper")
	server.AddMessage(id, "q1", "a1")

	_, err := execute(t, provider, "delete", "2")
	require.NoError(t, err)
	out, err := execute(t, provider, "list")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = execute(t, provider, "delete", "2")
	assert.EqualError(t, err, "Chat not found")

	_, err = execute(t, provider, "delete", "x")
	assert.EqualError(t, err, `invalid history id "x"`)
}

func TestExpiredTokenLogsOut(t *testing.T) {
	server := apitest.New(t)
	provider := apptest.LoggedIn(t, server, email)
	server.ExpireTokens()

	_, err := execute(t, provider, "list")
	assert.ErrorIs(t, err, app.ErrNotLoggedIn)

	a, err := provider.Get()
	require.NoError(t, err)
	assert.Empty(t, a.Session.Token())
}

func TestOneLineKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("a", 68) + "ğüşöçığüşöç"
	out := oneLine(long)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 72, utf8.RuneCountInString(out))
	assert.Equal(t, strings.Repeat("a", 68)+"ğ...", out)

	assert.Equal(t, "kısa soru", oneLine("  kısa\n soru "))
}
