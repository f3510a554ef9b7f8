// Package upload implements the PDF upload widget.
package upload

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/malonaz/pdfchat/cli/tui/styles"
	"github.com/malonaz/pdfchat/internal/file"
)

// SubmitMsg asks the root to upload Path.
type SubmitMsg struct {
	Path string
}

// CloseMsg is sent when the file browser is dismissed.
type CloseMsg struct{}

type KeyMap struct {
	Browse key.Binding
	Submit key.Binding
	Clear  key.Binding
	Close  key.Binding
}

var keyMap = KeyMap{
	Browse: key.NewBinding(
		key.WithKeys("o"),
	),
	Submit: key.NewBinding(
		key.WithKeys("u", "ctrl+u"),
	),
	Clear: key.NewBinding(
		key.WithKeys("x"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
	),
}

// Model holds one selected file, a loading flag and the status line supplied by the root.
type Model struct {
	picker   filepicker.Model
	browsing bool
	selected string
	loading  bool
	status   string
	failed   bool
}

// New returns a widget browsing from dir.
func New(dir string) *Model {
	picker := filepicker.New()
	picker.AllowedTypes = file.PDFExtensions
	picker.CurrentDirectory = dir
	return &Model{picker: picker}
}

// Init reads the start directory.
func (m *Model) Init() tea.Cmd {
	return m.picker.Init()
}

// Selected returns the chosen file, or "".
func (m *Model) Selected() string { return m.selected }

// Loading reports whether an upload is in flight.
func (m *Model) Loading() bool { return m.loading }

// Browsing reports whether the file browser is open and capturing keys.
func (m *Model) Browsing() bool { return m.browsing }

// SetFile selects path without the browser.
func (m *Model) SetFile(path string) {
	if m.loading {
		return
	}
	m.selected = path
}

// SetStatus shows the status of the latest upload. failed renders it as an error.
func (m *Model) SetStatus(status string, failed bool) {
	m.status = status
	m.failed = failed
}

// Done re-enables the widget and clears the selection, whatever the outcome.
func (m *Model) Done() {
	m.loading = false
	m.selected = ""
}

// Submit starts an upload of the selected file.
func (m *Model) Submit() tea.Cmd {
	if m.loading || m.selected == "" {
		return nil
	}
	m.loading = true
	path := m.selected
	return func() tea.Msg { return SubmitMsg{Path: path} }
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.browsing {
			if key.Matches(keyMsg, keyMap.Close) {
				m.browsing = false
				return m, func() tea.Msg { return CloseMsg{} }
			}
		} else {
			switch {
			case key.Matches(keyMsg, keyMap.Browse):
				if m.loading {
					return m, nil
				}
				m.browsing = true
				return m, m.picker.Init()
			case key.Matches(keyMsg, keyMap.Submit):
				return m, m.Submit()
			case key.Matches(keyMsg, keyMap.Clear):
				if !m.loading {
					m.selected = ""
				}
				return m, nil
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.selected = path
		m.browsing = false
		return m, tea.Batch(cmd, func() tea.Msg { return CloseMsg{} })
	}
	return m, cmd
}

// View renders the widget.
func (m *Model) View() string {
	var b strings.Builder
	if m.browsing {
		b.WriteString(styles.DimTextStyle.Render("Pick a PDF (Esc to cancel)"))
		b.WriteString("\n")
		b.WriteString(m.picker.View())
		return styles.UploadStyle.Render(b.String())
	}

	switch {
	case m.loading:
		b.WriteString(styles.DimTextStyle.Render("Uploading "))
		b.WriteString(styles.FileStyle.Render(filepath.Base(m.selected)))
		b.WriteString(styles.DimTextStyle.Render("..."))
	case m.selected != "":
		b.WriteString("📎 ")
		b.WriteString(styles.FileStyle.Render(m.selected))
		b.WriteString(styles.DimTextStyle.Render("  (u upload • x clear)"))
	default:
		b.WriteString(styles.DimTextStyle.Render("No PDF selected (o browse)"))
	}
	if m.status != "" {
		b.WriteString("\n")
		if m.failed {
			b.WriteString(styles.ErrorStyle.Render(m.status))
		} else {
			b.WriteString(styles.SuccessStyle.Render(m.status))
		}
	}
	return styles.UploadStyle.Render(b.String())
}
