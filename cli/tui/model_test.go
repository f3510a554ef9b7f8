package tui

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/pdfchat/cli/tui/chatbox"
	"github.com/malonaz/pdfchat/cli/tui/forms"
	"github.com/malonaz/pdfchat/cli/tui/sidebar"
	"github.com/malonaz/pdfchat/cli/tui/upload"
	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/api/apitest"
	"github.com/malonaz/pdfchat/internal/auth"
	"github.com/malonaz/pdfchat/internal/configuration"
	"github.com/malonaz/pdfchat/internal/history"
	"github.com/malonaz/pdfchat/internal/types"
	"github.com/malonaz/pdfchat/internal/workspace"
	"github.com/malonaz/pdfchat/store"
)

const (
	email    = "a@b.com"
	password = "x"
)

type fixture struct {
	m       *Model
	server  *apitest.Server
	storage *store.Store
	session *auth.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	server := apitest.New(t)
	server.AddUser("alice", email, password)

	storage, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	session := auth.NewSession(storage)
	client := api.New(server.URL, session, api.WithTimeout(5*time.Second))
	config := &configuration.Config{
		BackendURL: server.URL,
		Upload:     &configuration.UploadConfig{MaxBytes: 1024},
		Chat: &configuration.ChatConfig{
			DateFormat:   "02.01.2006 15:04",
			SidebarWidth: 32,
			HistorySize:  10,
		},
	}
	ws := workspace.New(client, session, workspace.Config{MaxUploadBytes: config.Upload.MaxBytes})
	m, err := New(context.Background(), config, ws, history.New(storage, config.Chat.HistorySize), t.TempDir())
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &fixture{m: m, server: server, storage: storage, session: session}
}

// loggedIn starts the model with a persisted token, as a restored session would.
func (f *fixture) loggedIn(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.Begin(f.server.IssueToken(email)))
	f.m.authenticated = true
	f.settle(t, f.m.onLogin())
}

// settle runs cmd and feeds back every message the client itself produced until none are left.
// Ticks and blinks are discarded so the loop ends.
func (f *fixture) settle(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	pending := []tea.Cmd{cmd}
	for round := 0; len(pending) > 0; round++ {
		require.Less(t, round, 20, "messages kept coming")
		var next []tea.Cmd
		for _, msg := range collect(pending) {
			switch msg.(type) {
			case outcomeMsg,
				forms.SubmitMsg, forms.ToggleMsg,
				chatbox.SubmitMsg,
				upload.SubmitMsg, upload.CloseMsg,
				sidebar.SelectMsg, sidebar.NewMsg, sidebar.DeleteMsg, sidebar.ReloadMsg:
				_, c := f.m.Update(msg)
				next = append(next, c)
			}
		}
		pending = next
	}
}

// collect runs cmds concurrently, expanding batches, and returns the messages produced within a second.
func collect(cmds []tea.Cmd) []tea.Msg {
	var (
		mu   sync.Mutex
		msgs []tea.Msg
		wg   sync.WaitGroup
	)
	var run func(cmd tea.Cmd)
	run = func(cmd tea.Cmd) {
		if cmd == nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := cmd()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, c := range batch {
					run(c)
				}
				return
			}
			mu.Lock()
			msgs = append(msgs, msg)
			mu.Unlock()
		}()
	}
	for _, cmd := range cmds {
		run(cmd)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	mu.Lock()
	defer mu.Unlock()
	return append([]tea.Msg(nil), msgs...)
}

func (f *fixture) press(t *testing.T, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := f.m.Update(msg)
	f.settle(t, cmd)
}

func (f *fixture) typeText(t *testing.T, text string) {
	t.Helper()
	f.press(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func (f *fixture) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	_, cmd := f.m.Update(msg)
	f.settle(t, cmd)
}

func (f *fixture) storedToken(t *testing.T) string {
	t.Helper()
	value, _, err := f.storage.GetItem(auth.TokenKey)
	require.NoError(t, err)
	return value
}

func sessionTitles(m *Model) []string {
	var titles []string
	for _, s := range m.sidebar.Sessions() {
		titles = append(titles, s.Title)
	}
	return titles
}

func TestLoginShowsWorkspace(t *testing.T) {
	f := newFixture(t)
	f.server.AddSession(email, "Attention paper")
	f.server.QueueToken("T")
	assert.Contains(t, f.m.View(), "Log in")

	f.typeText(t, email)
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	f.typeText(t, password)
	f.press(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, f.m.authenticated)
	assert.Equal(t, "T", f.storedToken(t))
	assert.Equal(t, []string{"Attention paper"}, sessionTitles(f.m))
	assert.Contains(t, f.m.View(), "Attention paper")
}

func TestLoginFailureShowsDetail(t *testing.T) {
	f := newFixture(t)
	f.typeText(t, email)
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	f.typeText(t, "wrong")
	f.press(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, f.m.authenticated)
	assert.False(t, f.m.login.Loading())
	assert.Equal(t, "Incorrect email or password", f.m.login.Err())
}

func TestEmptyFormSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.press(t, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 0, f.server.TotalCalls())
}

func TestSignupToggle(t *testing.T) {
	f := newFixture(t)
	f.press(t, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, f.m.workspace.ShowSignup())
	assert.Contains(t, f.m.View(), "Sign up")

	f.typeText(t, "bob")
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	f.typeText(t, "bob@b.com")
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	f.typeText(t, "pw")
	f.press(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, f.m.authenticated)
	assert.NotEmpty(t, f.storedToken(t))
	assert.False(t, f.m.workspace.ShowSignup())
}

func TestRestoredSessionLoadsSidebarOnInit(t *testing.T) {
	f := newFixture(t)
	f.server.AddSession(email, "Tax forms")
	require.NoError(t, f.session.Begin(f.server.IssueToken(email)))

	ws := f.m.workspace
	m, err := New(context.Background(), f.m.config, ws, history.New(nil, 10), t.TempDir())
	require.NoError(t, err)
	f.m = m
	require.True(t, m.authenticated)

	f.settle(t, m.Init())
	assert.Equal(t, []string{"Tax forms"}, sessionTitles(m))
}

func TestChatAddsSessionToSidebar(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	require.Empty(t, f.m.sidebar.Sessions())

	f.typeText(t, "what is attention")
	f.press(t, tea.KeyMsg{Type: tea.KeyCtrlJ})

	assert.Equal(t, []types.Entry{{User: "what is attention", Bot: "Echo: what is attention"}}, f.m.workspace.Transcript())
	assert.False(t, f.m.chat.Loading())
	assert.Empty(t, f.m.chat.Value())
	assert.Equal(t, []string{"what is attention"}, sessionTitles(f.m))
	assert.Equal(t, f.server.SessionIDs(email)[0], f.m.workspace.SelectedSessionID())
}

func TestChatRenamesNewSession(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	f.send(t, sidebar.NewMsg{})
	require.Equal(t, []string{apitest.DefaultTitle}, sessionTitles(f.m))

	f.send(t, chatbox.SubmitMsg{Query: "summarise the second chapter please now"})
	assert.Equal(t, []string{"summarise the second chapter please"}, sessionTitles(f.m))
	assert.Equal(t, 1, f.server.Calls("GET /chat-sessions"), "a known session is renamed in place")
}

func TestChatErrorBecomesEntry(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.server.Fail("POST /chat", 500, "model overloaded")

	f.send(t, chatbox.SubmitMsg{Query: "hello"})
	assert.Equal(t, []types.Entry{{User: "hello", Bot: "Error: model overloaded", Err: true}}, f.m.workspace.Transcript())
	assert.True(t, f.m.authenticated)
}

func TestUnauthorizedReturnsToLogin(t *testing.T) {
	f := newFixture(t)
	f.server.AddSession(email, "Attention paper")
	f.loggedIn(t)
	require.NotEmpty(t, f.m.sidebar.Sessions())

	f.server.ExpireTokens()
	f.send(t, chatbox.SubmitMsg{Query: "hello"})

	assert.False(t, f.m.authenticated)
	assert.Empty(t, f.storedToken(t))
	assert.Empty(t, f.m.sidebar.Sessions())
	assert.Empty(t, f.m.workspace.Transcript())
	assert.Contains(t, f.m.View(), "Log in")
}

func TestSelectAndDeleteSession(t *testing.T) {
	f := newFixture(t)
	older := f.server.AddSession(email, "Recipes")
	f.server.AddMessage(older, "eggs?", "Two.")
	newer := f.server.AddSession(email, "Tax forms")
	f.server.AddMessage(newer, "deadline?", "April.")
	f.loggedIn(t)
	require.Equal(t, []string{"Tax forms", "Recipes"}, sessionTitles(f.m))

	// Focus the sidebar, move to the older session and open it.
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, FocusSidebar, f.m.focusedComponent)
	f.press(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	f.press(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, older, f.m.workspace.SelectedSessionID())
	assert.Equal(t, []types.Entry{{User: "eggs?", Bot: "Two."}}, f.m.workspace.Transcript())
	assert.Equal(t, FocusChat, f.m.focusedComponent)

	f.send(t, sidebar.DeleteMsg{ID: older})
	assert.Equal(t, []string{"Tax forms"}, sessionTitles(f.m))
	assert.Zero(t, f.m.workspace.SelectedSessionID())
	assert.Empty(t, f.m.workspace.Transcript())
	assert.Equal(t, []int64{newer}, f.server.SessionIDs(email))
}

func TestDeleteFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	id := f.server.AddSession(email, "Recipes")
	f.loggedIn(t)

	f.server.Fail("DELETE /chat-sessions/:id", 500, "")
	f.send(t, sidebar.DeleteMsg{ID: id})
	assert.Equal(t, []string{"Recipes"}, sessionTitles(f.m))
	assert.False(t, f.m.sidebar.Deleting(id))
	assert.Equal(t, "Could not delete the chat.", f.m.sidebar.Err())
}

func TestLogoutKey(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.press(t, tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.False(t, f.m.authenticated)
	assert.Empty(t, f.storedToken(t))
	assert.Contains(t, f.m.View(), "Log in")
}

func TestUploadStatus(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))
	f.m.upload.SetFile(notes)
	f.settle(t, f.m.upload.Submit())

	assert.False(t, f.m.upload.Loading())
	assert.Empty(t, f.m.upload.Selected())
	assert.Contains(t, f.m.workspace.UploadMessage(), "only PDF files are accepted")
	assert.Contains(t, f.m.View(), "only PDF files are accepted")
	assert.Empty(t, f.server.Uploads())
}

func TestFocusCycle(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	require.Equal(t, FocusChat, f.m.focusedComponent)

	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusSidebar, f.m.focusedComponent)
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusUpload, f.m.focusedComponent)
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusChat, f.m.focusedComponent)

	f.press(t, tea.KeyMsg{Type: tea.KeyCtrlB})
	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusUpload, f.m.focusedComponent, "a hidden sidebar is skipped")
}
