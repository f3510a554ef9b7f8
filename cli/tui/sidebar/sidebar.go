// Package sidebar implements the session list.
package sidebar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/scylladb/go-set/i64set"

	"github.com/malonaz/pdfchat/cli/tui/styles"
	"github.com/malonaz/pdfchat/internal/api"
)

// SelectMsg asks the root to load session ID.
type SelectMsg struct {
	ID int64
}

// NewMsg asks the root to create a session.
type NewMsg struct{}

// DeleteMsg asks the root to delete session ID.
type DeleteMsg struct {
	ID int64
}

// ReloadMsg asks the root to refetch the list.
type ReloadMsg struct{}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	New    key.Binding
	Delete key.Binding
	Reload key.Binding
}

var keyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
	),
}

// Model is the sidebar state. The list is owned here; the root feeds it outcomes.
type Model struct {
	sessions   []*api.ChatSession
	cursor     int
	selectedID int64
	deleting   *i64set.Set

	loading bool
	err     string

	spinner    spinner.Model
	dateFormat string
	width      int
	height     int
}

// New returns an empty sidebar rendering dates with dateFormat.
func New(dateFormat string, width int) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.SpinnerStyle
	return &Model{
		deleting:   i64set.New(),
		spinner:    sp,
		dateFormat: dateFormat,
		width:      width,
	}
}

// Sessions returns the listed sessions.
func (m *Model) Sessions() []*api.ChatSession { return m.sessions }

// Loading reports whether a fetch is in flight.
func (m *Model) Loading() bool { return m.loading }

// Err returns the last error shown.
func (m *Model) Err() string { return m.err }

// Deleting reports whether a delete of id is in flight.
func (m *Model) Deleting(id int64) bool { return m.deleting.Has(id) }

// Width returns the rendered width including the border.
func (m *Model) Width() int { return m.width }

// SetHeight bounds the number of rendered rows.
func (m *Model) SetHeight(height int) { m.height = height }

// StartLoading marks a fetch in flight.
func (m *Model) StartLoading() tea.Cmd {
	m.loading = true
	m.err = ""
	return m.spinner.Tick
}

// SetSessions replaces the list. errMessage is shown instead when non-empty.
func (m *Model) SetSessions(sessions []*api.ChatSession, errMessage string) {
	m.loading = false
	m.err = errMessage
	if errMessage != "" {
		return
	}
	m.sessions = sessions
	m.clampCursor()
}

// SetError shows errMessage until the next load.
func (m *Model) SetError(errMessage string) { m.err = errMessage }

// Add prepends a freshly created session.
func (m *Model) Add(session *api.ChatSession) {
	m.sessions = append([]*api.ChatSession{session}, m.sessions...)
	m.cursor = 0
}

// Remove drops session id from the list once its delete has finished.
func (m *Model) Remove(id int64) {
	m.deleting.Remove(id)
	for i, s := range m.sessions {
		if s.ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			break
		}
	}
	m.clampCursor()
}

// DeleteFailed re-enables deletion of id and shows errMessage.
func (m *Model) DeleteFailed(id int64, errMessage string) {
	m.deleting.Remove(id)
	m.err = errMessage
}

// UpdateTitle renames session id. It reports false when id is not listed.
func (m *Model) UpdateTitle(id int64, title string) bool {
	for _, s := range m.sessions {
		if s.ID == id {
			if title != "" {
				s.Title = title
			}
			return true
		}
	}
	return false
}

// SetSelected highlights session id. Zero clears the highlight.
func (m *Model) SetSelected(id int64) { m.selectedID = id }

// Clear forgets every session, for logout.
func (m *Model) Clear() {
	m.sessions = nil
	m.cursor = 0
	m.selectedID = 0
	m.deleting.Clear()
	m.loading = false
	m.err = ""
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.sessions) {
		m.cursor = len(m.sessions) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) current() (*api.ChatSession, bool) {
	if m.cursor < 0 || m.cursor >= len(m.sessions) {
		return nil, false
	}
	return m.sessions[m.cursor], true
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keyMap.Down):
			if m.cursor < len(m.sessions)-1 {
				m.cursor++
			}
		case key.Matches(msg, keyMap.New):
			return m, func() tea.Msg { return NewMsg{} }
		case key.Matches(msg, keyMap.Reload):
			if m.loading {
				return m, nil
			}
			return m, func() tea.Msg { return ReloadMsg{} }
		case key.Matches(msg, keyMap.Select):
			if s, ok := m.current(); ok {
				id := s.ID
				return m, func() tea.Msg { return SelectMsg{ID: id} }
			}
		case key.Matches(msg, keyMap.Delete):
			s, ok := m.current()
			if !ok || m.deleting.Has(s.ID) {
				return m, nil
			}
			m.deleting.Add(s.ID)
			id := s.ID
			return m, func() tea.Msg { return DeleteMsg{ID: id} }
		}
	}
	return m, nil
}

// View renders the list. focused shows the cursor.
func (m *Model) View(focused bool) string {
	inner := m.width - styles.SidebarStyle.GetHorizontalFrameSize()
	var b strings.Builder
	b.WriteString(styles.FormTitleStyle.UnsetMarginBottom().Render("Chats"))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + styles.DimTextStyle.Render(" Loading..."))
		b.WriteString("\n")
	case m.err != "":
		b.WriteString(styles.ErrorStyle.Width(inner).Render(m.err))
		b.WriteString("\n")
	}
	if len(m.sessions) == 0 && !m.loading {
		b.WriteString(styles.DimTextStyle.Render("No chats yet (n new)"))
		b.WriteString("\n")
	}

	// Two rows per session below the title.
	start, end := 0, len(m.sessions)
	if m.height > 0 {
		rows := max((m.height-2)/2, 1)
		if m.cursor >= rows {
			start = m.cursor - rows + 1
		}
		end = min(start+rows, len(m.sessions))
	}
	for i := start; i < end; i++ {
		s := m.sessions[i]
		title := s.Title
		if title == "" {
			title = fmt.Sprintf("Chat %d", s.ID)
		}
		if m.deleting.Has(s.ID) {
			title += " (deleting)"
		}
		title = styles.Truncate(title, max(inner-2, 4))

		style := styles.SidebarItemStyle
		switch {
		case focused && i == m.cursor:
			style = styles.SidebarCursorStyle
		case s.ID == m.selectedID:
			style = styles.SidebarSelectedStyle
		}
		b.WriteString(style.Width(inner).Render(title))
		b.WriteString("\n")
		b.WriteString(styles.SidebarDateStyle.Render(s.CreatedAt.Format(m.dateFormat)))
		b.WriteString("\n")
	}
	return styles.SidebarStyle.Width(inner).Render(strings.TrimSuffix(b.String(), "\n"))
}
