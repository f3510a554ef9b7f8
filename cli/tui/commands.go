package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malonaz/pdfchat/cli/tui/forms"
	"github.com/malonaz/pdfchat/internal/workspace"
)

// outcomeMsg delivers a finished task to Update.
type outcomeMsg struct {
	outcome workspace.Outcome
}

// run performs task off the event loop. A nil task yields a nil command.
func (m *Model) run(task workspace.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return outcomeMsg{outcome: task(ctx)}
	}
}

func (m *Model) loadSessions() tea.Cmd {
	return tea.Batch(m.sidebar.StartLoading(), m.run(m.workspace.ListSessions()))
}

// applyOutcome folds outcome into the workspace, then brings every component in line with it.
// Loading flags are released even when the outcome was stale.
func (m *Model) applyOutcome(outcome workspace.Outcome) tea.Cmd {
	applied := m.workspace.Apply(outcome)
	errMessage := workspace.ErrorMessage(outcome)
	if !applied {
		log.Debug("dropped stale outcome", "type", fmt.Sprintf("%T", outcome))
	}

	var cmds []tea.Cmd
	switch o := outcome.(type) {
	case *workspace.AuthOutcome:
		kind := forms.Login
		if o.Signup {
			kind = forms.Signup
		}
		form := m.formFor(kind)
		if !applied {
			form.Done("")
			break
		}
		form.Done(errMessage)
		if o.Err == nil {
			cmds = append(cmds, m.onLogin())
		}

	case *workspace.ChatOutcome:
		m.chat.Done()
		if !applied || !m.workspace.Authenticated() {
			break
		}
		m.chat.SetEntries(m.workspace.Transcript(), false)
		if o.Err == nil {
			id := m.workspace.SelectedSessionID()
			m.sidebar.SetSelected(id)
			if !m.sidebar.UpdateTitle(id, o.Reply.SessionTitle) {
				cmds = append(cmds, m.loadSessions())
			}
		}

	case *workspace.UploadOutcome:
		m.upload.Done()
		if applied && m.workspace.Authenticated() {
			m.upload.SetStatus(m.workspace.UploadMessage(), o.Err != nil)
			m.recalculateLayout()
		}

	case *workspace.ListSessionsOutcome:
		if applied && m.workspace.Authenticated() {
			m.sidebar.SetSessions(o.Sessions, errMessage)
		}

	case *workspace.NewSessionOutcome:
		if !applied || !m.workspace.Authenticated() {
			break
		}
		if o.Err != nil {
			m.sidebar.SetError(errMessage)
			break
		}
		m.sidebar.Add(o.Session)
		m.sidebar.SetSelected(o.Session.ID)
		m.chat.SetEntries(m.workspace.Transcript(), true)
		cmds = append(cmds, m.setFocus(FocusChat))

	case *workspace.SelectSessionOutcome:
		if !applied || !m.workspace.Authenticated() {
			break
		}
		if o.Err != nil {
			m.sidebar.SetError(errMessage)
			break
		}
		m.sidebar.SetSelected(o.ID)
		m.chat.SetEntries(m.workspace.Transcript(), true)
		cmds = append(cmds, m.setFocus(FocusChat))

	case *workspace.DeleteSessionOutcome:
		if !applied || !m.workspace.Authenticated() {
			m.sidebar.DeleteFailed(o.ID, "")
			break
		}
		if o.Err != nil {
			m.sidebar.DeleteFailed(o.ID, errMessage)
			break
		}
		m.sidebar.Remove(o.ID)
		if m.workspace.SelectedSessionID() == 0 {
			m.sidebar.SetSelected(0)
			m.chat.SetEntries(m.workspace.Transcript(), true)
		}
	}

	if m.authenticated && !m.workspace.Authenticated() {
		m.onLogout()
	}
	return tea.Batch(cmds...)
}

// onLogin shows the workspace for a fresh identity.
func (m *Model) onLogin() tea.Cmd {
	m.authenticated = true
	m.login.Reset()
	m.signup.Reset()
	m.sidebar.Clear()
	m.upload.SetStatus("", false)
	m.chat.SetEntries(nil, true)
	m.recalculateLayout()
	return tea.Batch(m.setFocus(FocusChat), m.loadSessions())
}

// onLogout returns to the login view after the workspace dropped the identity.
func (m *Model) onLogout() {
	m.authenticated = false
	m.sidebar.Clear()
	m.upload.SetStatus("", false)
	m.chat.SetEntries(nil, true)
	m.chat.Blur()
	m.focusedComponent = FocusChat
	m.login.Reset()
	m.signup.Reset()
}

// setFocus moves key focus to component.
func (m *Model) setFocus(component FocusedComponent) tea.Cmd {
	if component == FocusSidebar && !m.sidebarVisible {
		component = FocusChat
	}
	m.focusedComponent = component
	if component == FocusChat {
		return m.chat.Focus()
	}
	m.chat.Blur()
	return nil
}
