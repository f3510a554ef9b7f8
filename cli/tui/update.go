package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/malonaz/pdfchat/cli/tui/chatbox"
	"github.com/malonaz/pdfchat/cli/tui/forms"
	"github.com/malonaz/pdfchat/cli/tui/sidebar"
	"github.com/malonaz/pdfchat/cli/tui/upload"
)

type KeyMapSession struct {
	Quit          key.Binding
	CycleFocus    key.Binding
	ToggleSidebar key.Binding
	Logout        key.Binding
}

var keyMapSession = KeyMapSession{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
	CycleFocus: key.NewBinding(
		key.WithKeys("tab"),
	),
	ToggleSidebar: key.NewBinding(
		key.WithKeys("ctrl+b"),
	),
	Logout: key.NewBinding(
		key.WithKeys("ctrl+l"),
	),
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.recalculateLayout()
		// The file picker sizes itself from the window.
		var cmd tea.Cmd
		m.upload, cmd = m.upload.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keyMapSession.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if !m.authenticated {
			var cmd tea.Cmd
			if m.workspace.ShowSignup() {
				m.signup, cmd = m.signup.Update(msg)
			} else {
				m.login, cmd = m.login.Update(msg)
			}
			return m, cmd
		}
		return m, m.handleWorkspaceKey(msg)

	case outcomeMsg:
		return m, m.applyOutcome(msg.outcome)

	// Credential forms.
	case forms.SubmitMsg:
		task := m.workspace.Login(msg.Email, msg.Password)
		if msg.Kind == forms.Signup {
			task = m.workspace.Signup(msg.Username, msg.Email, msg.Password)
		}
		if task == nil {
			m.formFor(msg.Kind).Done("")
			return m, nil
		}
		log.Info("authenticating", "signup", msg.Kind == forms.Signup, "email", msg.Email)
		return m, m.run(task)

	case forms.ToggleMsg:
		m.workspace.SetShowSignup(!m.workspace.ShowSignup())
		m.form().Reset()
		return m, nil

	// Chat panel.
	case chatbox.SubmitMsg:
		task := m.workspace.Chat(msg.Query)
		if task == nil {
			m.chat.Done()
			return m, nil
		}
		return m, m.run(task)

	// Upload widget.
	case upload.SubmitMsg:
		task := m.workspace.Upload(msg.Path)
		if task == nil {
			m.upload.Done()
			return m, nil
		}
		m.recalculateLayout()
		return m, m.run(task)

	case upload.CloseMsg:
		m.recalculateLayout()
		return m, nil

	// Sidebar.
	case sidebar.SelectMsg:
		return m, m.run(m.workspace.SelectSession(msg.ID))

	case sidebar.NewMsg:
		return m, m.run(m.workspace.NewSession())

	case sidebar.DeleteMsg:
		return m, m.run(m.workspace.DeleteSession(msg.ID))

	case sidebar.ReloadMsg:
		return m, m.loadSessions()
	}

	// Everything else is a tick, blink or async read that the owning component recognises.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	cmds = append(cmds, cmd)
	m.signup, cmd = m.signup.Update(msg)
	cmds = append(cmds, cmd)
	m.upload, cmd = m.upload.Update(msg)
	cmds = append(cmds, cmd)
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)
	m.sidebar, cmd = m.sidebar.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleWorkspaceKey routes a key press once logged in.
func (m *Model) handleWorkspaceKey(msg tea.KeyMsg) tea.Cmd {
	// The file browser captures every key until it closes.
	if m.upload.Browsing() {
		var cmd tea.Cmd
		m.upload, cmd = m.upload.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, keyMapSession.Logout):
		log.Info("logging out")
		m.workspace.Logout()
		m.onLogout()
		return nil

	case key.Matches(msg, keyMapSession.ToggleSidebar):
		m.sidebarVisible = !m.sidebarVisible
		m.recalculateLayout()
		if !m.sidebarVisible {
			if m.focusedComponent == FocusSidebar {
				return m.setFocus(FocusChat)
			}
			return nil
		}
		return m.loadSessions()

	case key.Matches(msg, keyMapSession.CycleFocus):
		switch m.focusedComponent {
		case FocusChat:
			if m.sidebarVisible {
				return m.setFocus(FocusSidebar)
			}
			return m.setFocus(FocusUpload)
		case FocusSidebar:
			return m.setFocus(FocusUpload)
		default:
			return m.setFocus(FocusChat)
		}
	}

	var cmd tea.Cmd
	switch m.focusedComponent {
	case FocusSidebar:
		m.sidebar, cmd = m.sidebar.Update(msg)
	case FocusUpload:
		m.upload, cmd = m.upload.Update(msg)
		if m.upload.Browsing() {
			m.recalculateLayout()
		}
	default:
		m.chat, cmd = m.chat.Update(msg)
	}
	return cmd
}
