package api_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/api/apitest"
)

// tokenHolder is a minimal Credentials implementation.
type tokenHolder struct {
	mu      sync.Mutex
	token   string
	revoked []string
}

func (h *tokenHolder) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *tokenHolder) Revoke(token string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.revoked = append(h.revoked, token)
	if h.token == token {
		h.token = ""
	}
	return nil
}

func newClient(t *testing.T) (*api.Client, *apitest.Server, *tokenHolder) {
	t.Helper()
	server := apitest.New(t)
	server.AddUser("alice", "a@b.com", "x")
	holder := &tokenHolder{}
	return api.New(server.URL+"/", holder, api.WithTimeout(5*time.Second)), server, holder
}

func TestLoginAndSignup(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newClient(t)

	token, err := client.Login(ctx, "a@b.com", "x")
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)

	_, err = client.Login(ctx, "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", api.ErrorText(err, "Login failed."))

	token, err = client.Signup(ctx, "bob", "bob@b.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)

	_, err = client.Signup(ctx, "carol", "a@b.com", "pw")
	assert.Equal(t, "Email already registered", api.ErrorText(err, "Sign up failed."))
}

func TestValidationErrorsAreFlattened(t *testing.T) {
	client, _, _ := newClient(t)

	_, err := client.Login(context.Background(), "", "")
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "missing", apiErr.Code)
	assert.Equal(t, "Field required: email; Field required: password", apiErr.Message)
}

func TestAuthenticatedCallWithoutToken(t *testing.T) {
	client, server, _ := newClient(t)

	_, err := client.ListChatSessions(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, 0, server.TotalCalls(), "no request is sent without a token")
}

func TestUnauthorizedRevokesToken(t *testing.T) {
	client, server, holder := newClient(t)
	holder.token = server.IssueToken("a@b.com")
	server.ExpireTokens()

	rejected := holder.token
	_, err := client.Chat(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Could not validate credentials", api.ErrorText(err, "fallback"))
	assert.Empty(t, holder.Token())
	assert.Equal(t, []string{rejected}, holder.revoked)
}

func TestChatFlow(t *testing.T) {
	ctx := context.Background()
	client, server, holder := newClient(t)
	holder.token = server.IssueToken("a@b.com")
	server.SetReply(func(string) string { return "hi" })

	reply, err := client.Chat(ctx, "hello there my good friend again")
	require.NoError(t, err)
	assert.Equal(t, "hi", reply.Response)
	assert.NotZero(t, reply.SessionID)
	assert.Equal(t, "hello there my good friend again", reply.SessionTitle)

	created, err := client.CreateChatSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, apitest.DefaultTitle, created.Title)
	assert.False(t, created.CreatedAt.IsZero())

	reply, err = client.Chat(ctx, "summarize chapter one of the book please")
	require.NoError(t, err)
	assert.Equal(t, created.ID, reply.SessionID, "chat goes to the newest session")
	assert.Equal(t, "summarize chapter one of the", reply.SessionTitle)

	sessions, err := client.ListChatSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, created.ID, sessions[0].ID, "newest first")
	assert.True(t, sessions[0].CreatedAt.After(sessions[1].CreatedAt.Time))

	messages, err := client.ListSessionMessages(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "summarize chapter one of the book please", messages[0].Message)
	assert.Equal(t, "hi", messages[0].Response)

	require.NoError(t, client.DeleteChatSession(ctx, created.ID))
	sessions, err = client.ListChatSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	err = client.DeleteChatSession(ctx, created.ID)
	assert.Equal(t, "Session not found", api.ErrorText(err, ""))
}

func TestChatHistory(t *testing.T) {
	ctx := context.Background()
	client, server, holder := newClient(t)
	holder.token = server.IssueToken("a@b.com")
	id := server.AddSession("a@b.com", "Notes")
	first := server.AddMessage(id, "one", "1")
	second := server.AddMessage(id, "two", "2")

	history, err := client.ListChatHistory(ctx)
	require.NoError(t, err)
	var ids []int64
	for _, m := range history {
		ids = append(ids, m.ID)
	}
	if diff := cmp.Diff([]int64{second, first}, ids); diff != "" {
		t.Errorf("history order mismatch (-want +got):\n%s", diff)
	}

	message, err := client.DeleteChatHistory(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Chat deleted", message)
	history, err = client.ListChatHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUploadPDF(t *testing.T) {
	client, server, holder := newClient(t)
	holder.token = server.IssueToken("a@b.com")

	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0644))

	message, err := client.UploadPDF(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "paper.pdf indexed (13 bytes).", message)
	assert.Equal(t, []apitest.Upload{{Email: "a@b.com", Filename: "paper.pdf", Size: 13}}, server.Uploads())

	_, err = client.UploadPDF(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Equal(t, "Upload failed.", api.ErrorText(err, "Upload failed."))
}

func TestServerErrorWithoutDetail(t *testing.T) {
	client, server, holder := newClient(t)
	holder.token = server.IssueToken("a@b.com")
	server.Fail("GET /chat-sessions", http.StatusInternalServerError, "")

	_, err := client.ListChatSessions(context.Background())
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Internal Server Error", apiErr.Message)
	assert.Equal(t, "Something went wrong.", api.ErrorText(err, "Something went wrong."))
	assert.False(t, api.IsUnauthorized(err))
}

func TestTransportError(t *testing.T) {
	client := api.New("http://127.0.0.1:1", &tokenHolder{})
	_, err := client.Login(context.Background(), "a@b.com", "x")
	require.Error(t, err)
	assert.Equal(t, "Login failed.", api.ErrorText(err, "Login failed."))
}
