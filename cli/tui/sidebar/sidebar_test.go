package sidebar

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/pdfchat/internal/api"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestModel() *Model {
	m := New("02.01.2006 15:04", 32)
	created := api.Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	m.SetSessions([]*api.ChatSession{
		{ID: 3, Title: "Attention paper", CreatedAt: created},
		{ID: 2, Title: "Tax forms", CreatedAt: created},
		{ID: 1, Title: "Recipes", CreatedAt: created},
	}, "")
	return m
}

func TestNavigateAndSelect(t *testing.T) {
	m := newTestModel()
	m, _ = m.Update(keyRune('j'))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(keyRune('j'))
	assert.Equal(t, 2, m.cursor, "cursor stops at the last session")

	m, _ = m.Update(keyRune('k'))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectMsg{ID: 2}, cmd())
}

func TestNewAndReload(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(keyRune('n'))
	require.NotNil(t, cmd)
	assert.Equal(t, NewMsg{}, cmd())

	_, cmd = m.Update(keyRune('r'))
	require.NotNil(t, cmd)
	assert.Equal(t, ReloadMsg{}, cmd())

	m.StartLoading()
	_, cmd = m.Update(keyRune('r'))
	assert.Nil(t, cmd, "no reload while a fetch is in flight")
}

func TestDeleteInFlightIsIgnored(t *testing.T) {
	m := newTestModel()
	m, cmd := m.Update(keyRune('d'))
	require.NotNil(t, cmd)
	assert.Equal(t, DeleteMsg{ID: 3}, cmd())
	assert.True(t, m.Deleting(3))

	_, cmd = m.Update(keyRune('d'))
	assert.Nil(t, cmd)

	m.Remove(3)
	assert.False(t, m.Deleting(3))
	require.Len(t, m.Sessions(), 2)
	assert.Equal(t, int64(2), m.Sessions()[0].ID)
	assert.Equal(t, int64(1), m.Sessions()[1].ID)
}

func TestDeleteFailedAllowsRetry(t *testing.T) {
	m := newTestModel()
	m, _ = m.Update(keyRune('d'))
	m.DeleteFailed(3, "Could not delete the chat.")
	assert.False(t, m.Deleting(3))
	assert.Len(t, m.Sessions(), 3)
	assert.Contains(t, m.View(false), "Could not delete the chat.")

	_, cmd := m.Update(keyRune('d'))
	assert.NotNil(t, cmd)
}

func TestRemoveLastClampsCursor(t *testing.T) {
	m := newTestModel()
	m, _ = m.Update(keyRune('j'))
	m, _ = m.Update(keyRune('j'))
	m.Remove(1)
	assert.Equal(t, 1, m.cursor)
}

func TestUpdateTitle(t *testing.T) {
	m := newTestModel()
	assert.True(t, m.UpdateTitle(2, "Quarterly taxes"))
	assert.Equal(t, "Quarterly taxes", m.Sessions()[1].Title)
	assert.False(t, m.UpdateTitle(42, "Unknown"))
}

func TestLoadError(t *testing.T) {
	m := newTestModel()
	m.StartLoading()
	assert.True(t, m.Loading())
	m.SetSessions(nil, "Could not load chats.")
	assert.False(t, m.Loading())
	assert.Len(t, m.Sessions(), 3, "a failed reload keeps the previous list")
	assert.Equal(t, "Could not load chats.", m.Err())
}

func TestView(t *testing.T) {
	m := newTestModel()
	m.SetSelected(2)
	view := m.View(true)
	assert.Contains(t, view, "Attention paper")
	assert.Contains(t, view, "01.05.2024 10:00")

	m.Clear()
	assert.Contains(t, m.View(true), "No chats yet")
}
