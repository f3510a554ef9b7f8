// Package chatbox implements the chat panel: the transcript and the query input.
package chatbox

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"github.com/malonaz/pdfchat/cli/tui/styles"
	"github.com/malonaz/pdfchat/internal/debug"
	"github.com/malonaz/pdfchat/internal/history"
	"github.com/malonaz/pdfchat/internal/markdown"
	"github.com/malonaz/pdfchat/internal/types"
)

// SubmitMsg carries a query to the root.
type SubmitMsg struct {
	Query string
}

type KeyMap struct {
	Send                 key.Binding
	PreviousHistoryEntry key.Binding
	NextHistoryEntry     key.Binding
	CopyResponse         key.Binding
	CopyCode             key.Binding
	ScrollUp             key.Binding
	ScrollDown           key.Binding
}

var keyMap = KeyMap{
	Send: key.NewBinding(
		key.WithKeys("ctrl+j"),
	),
	PreviousHistoryEntry: key.NewBinding(
		key.WithKeys("alt+p"),
	),
	NextHistoryEntry: key.NewBinding(
		key.WithKeys("alt+n"),
	),
	CopyResponse: key.NewBinding(
		key.WithKeys("alt+w"),
	),
	CopyCode: key.NewBinding(
		key.WithKeys("alt+y"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("ctrl+p", "pgup"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("ctrl+n", "pgdown"),
	),
}

var clipboardReady bool

// InitClipboard prepares the system clipboard. Copy keys do nothing until it succeeds.
func InitClipboard() error {
	if err := clipboard.Init(); err != nil {
		return err
	}
	clipboardReady = true
	return nil
}

// writeClipboard is swapped in tests.
var writeClipboard = func(content string) {
	if clipboardReady {
		clipboard.Write(clipboard.FmtText, []byte(content))
	}
}

// Model renders the transcript and owns the input buffer and loading flag.
type Model struct {
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *markdown.Renderer
	alert    bubbleup.AlertModel

	history           *history.History
	historyNavigating bool

	entries []types.Entry
	loading bool
	focused bool
	width   int
	height  int
}

// New returns a chat panel recalling input through hist.
func New(hist *history.History, renderer *markdown.Renderer) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your PDFs... (Ctrl+J to send, Alt+P/N for history)"
	ta.CharLimit = 0
	ta.SetWidth(styles.DefaultTextareaWidth)
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	alert := bubbleup.NewAlertModel(25, true, 1)

	return &Model{
		textarea: ta,
		viewport: viewport.New(styles.DefaultTextareaWidth, styles.MinViewportHeight),
		spinner:  sp,
		renderer: renderer,
		alert:    *alert,
		history:  hist,
	}
}

// Init starts the cursor, spinner and alert loops.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.alert.Init())
}

// Focus gives the input keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.textarea.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.textarea.Blur()
}

// Loading reports whether a query is in flight.
func (m *Model) Loading() bool { return m.loading }

// Value returns the input buffer.
func (m *Model) Value() string { return m.textarea.Value() }

// SetEntries replaces the rendered transcript.
// Pass replaced when the transcript was swapped rather than appended to.
func (m *Model) SetEntries(entries []types.Entry, replaced bool) {
	if replaced {
		m.renderer.Reset()
	}
	m.entries = entries
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

// Done re-enables the input and clears it.
func (m *Model) Done() {
	m.loading = false
	m.textarea.Reset()
	m.adjustTextareaHeight()
}

// SetSize lays the panel out in width x height cells.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.textarea.SetWidth(width - styles.TextAreaStyle.GetHorizontalFrameSize())
	if err := m.renderer.SetWidth(width - styles.MessageHorizontalFrameSize() - 10); err != nil {
		debug.GetLogger().Warn("resizing markdown renderer", "error", err)
	}
	m.viewport.Width = width
	m.layout()
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmds []tea.Cmd

	outAlert, alertCmd := m.alert.Update(msg)
	m.alert = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if !m.focused {
			return m, tea.Batch(cmds...)
		}
		switch {
		case key.Matches(msg, keyMap.Send):
			cmds = append(cmds, m.submit())
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keyMap.PreviousHistoryEntry):
			if !m.loading {
				if entry, ok := m.history.Previous(m.textarea.Value()); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
				}
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keyMap.NextHistoryEntry):
			if !m.loading {
				if entry, ok := m.history.Next(); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
				}
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keyMap.CopyResponse):
			if last, ok := m.lastResponse(); ok {
				writeClipboard(last)
				cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!"))
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keyMap.CopyCode):
			if last, ok := m.lastResponse(); ok {
				if code, ok := markdown.LastCodeBlock(last); ok {
					writeClipboard(code)
					cmds = append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, "Copied code block!"))
				}
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keyMap.ScrollUp):
			m.viewport.LineUp(3)
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keyMap.ScrollDown):
			m.viewport.LineDown(3)
			return m, tea.Batch(cmds...)
		}

		if m.loading {
			return m, tea.Batch(cmds...)
		}
		if m.historyNavigating {
			switch msg.Type {
			case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete, tea.KeyEnter:
				m.history.Reset()
				m.historyNavigating = false
			}
		}
	}

	if !m.loading {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.adjustTextareaHeight()
	}
	return m, tea.Batch(cmds...)
}

// submit disables the panel and emits the query. Blank input is ignored.
func (m *Model) submit() tea.Cmd {
	if m.loading {
		return nil
	}
	query := strings.TrimSpace(m.textarea.Value())
	if query == "" {
		return nil
	}
	m.history.Add(query)
	m.historyNavigating = false
	m.loading = true
	m.layout()
	return func() tea.Msg { return SubmitMsg{Query: query} }
}

func (m *Model) lastResponse() (string, bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if !m.entries[i].Err {
			return m.entries[i].Bot, true
		}
	}
	return "", false
}

// adjustTextareaHeight resizes the textarea based on content line count.
func (m *Model) adjustTextareaHeight() {
	lineCount := strings.Count(m.textarea.Value(), "\n") + 1
	newHeight := min(max(lineCount, styles.MinTextareaHeight), styles.MaxTextareaHeight)
	if m.textarea.Height() != newHeight {
		m.textarea.SetHeight(newHeight)
		m.layout()
	}
}

// layout gives the viewport whatever height the input leaves.
func (m *Model) layout() {
	if m.height == 0 {
		return
	}
	inputHeight := 1
	if !m.loading {
		inputHeight = m.textarea.Height() + styles.TextAreaStyle.GetVerticalFrameSize()
	}
	m.viewport.Height = max(m.height-inputHeight, styles.MinViewportHeight)
}

func (m *Model) render() string {
	if len(m.entries) == 0 {
		return styles.DimTextStyle.Render("No messages yet. Upload a PDF and ask away.")
	}
	var b strings.Builder
	for i, entry := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.UserMessageStyle.Render(entry.User))
		b.WriteString("\n")
		if entry.Err {
			b.WriteString(styles.BotErrorStyle.Render(entry.Bot))
		} else {
			b.WriteString(styles.BotMessageStyle.Render(m.renderer.Render(i, entry.Bot)))
		}
	}
	return b.String()
}

// View renders the panel.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.loading {
		b.WriteString(m.spinner.View() + " Thinking...")
	} else if m.focused {
		b.WriteString(styles.TextAreaStyle.Render(m.textarea.View()))
	} else {
		b.WriteString(styles.DisabledTextAreaStyle.Render(m.textarea.View()))
	}
	return m.alert.Render(b.String())
}
