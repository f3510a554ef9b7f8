package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/malonaz/pdfchat/cli/tui/styles"
)

const helpHeight = 1

// recalculateLayout sizes the sidebar and chat panel to the window.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	bodyHeight := max(m.height-styles.HeaderHeight-helpHeight, 1)
	m.sidebar.SetHeight(bodyHeight)

	chatWidth := m.width
	if m.sidebarVisible {
		chatWidth -= m.sidebar.Width()
	}
	chatHeight := bodyHeight - lipgloss.Height(m.upload.View())
	m.chat.SetSize(max(chatWidth, 10), max(chatHeight, styles.MinViewportHeight+1))
}

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	if !m.authenticated {
		form := m.form().View()
		b.WriteString(lipgloss.Place(m.width, max(m.height-styles.HeaderHeight-helpHeight, 1), lipgloss.Center, lipgloss.Center, form))
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.UnsetMarginTop().Render("Tab next field • Enter submit • Ctrl+S switch form • Ctrl+C quit"))
		return b.String()
	}

	var right string
	if m.upload.Browsing() {
		right = m.upload.View()
	} else {
		right = lipgloss.JoinVertical(lipgloss.Left, m.upload.View(), m.chat.View())
	}
	if m.sidebarVisible {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.focusedComponent == FocusSidebar), right))
	} else {
		b.WriteString(right)
	}
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.UnsetMarginTop().Render(m.help()))
	return b.String()
}

func (m *Model) renderTitle() string {
	title := fmt.Sprintf(" 📄 pdfchat │ 🌐 %s ", m.config.BackendURL)
	if id := m.workspace.SelectedSessionID(); id != 0 {
		title += fmt.Sprintf("│ 💬 %d ", id)
	}
	return styles.TitleStyle.Width(m.width).Render(title)
}

func (m *Model) help() string {
	switch m.focusedComponent {
	case FocusSidebar:
		return "j/k move • Enter open • n new • d delete • r reload • Tab focus • Ctrl+L log out"
	case FocusUpload:
		return "o browse • u upload • x clear • Tab focus • Ctrl+L log out"
	default:
		return "Ctrl+J send • Alt+P/N history • Alt+W copy • Alt+Y copy code • Tab focus • Ctrl+B sidebar • Ctrl+L log out"
	}
}
