// Package forms implements the login and signup forms.
package forms

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/malonaz/pdfchat/cli/tui/styles"
)

// Kind selects which form is shown.
type Kind int

const (
	Login Kind = iota
	Signup
)

// SubmitMsg carries a completed form to the root.
type SubmitMsg struct {
	Kind     Kind
	Username string
	Email    string
	Password string
}

// ToggleMsg asks the root to switch between login and signup.
type ToggleMsg struct{}

type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Toggle key.Binding
}

var keyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("ctrl+s"),
	),
}

type field struct {
	label string
	input textinput.Model
}

// Model is a credential form. It owns its inputs, error line and loading flag.
type Model struct {
	kind    Kind
	fields  []field
	focus   int
	err     string
	loading bool
}

// New returns an empty form of the given kind.
func New(kind Kind) *Model {
	m := &Model{kind: kind}
	if kind == Signup {
		m.fields = append(m.fields, newField("Username", false))
	}
	m.fields = append(m.fields, newField("Email", false), newField("Password", true))
	m.fields[0].input.Focus()
	return m
}

func newField(label string, secret bool) field {
	input := textinput.New()
	input.Placeholder = strings.ToLower(label)
	input.CharLimit = 256
	input.Width = styles.FormWidth - 8
	input.Prompt = "> "
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	return field{label: label, input: input}
}

// Kind returns the form kind.
func (m *Model) Kind() Kind { return m.kind }

// Loading reports whether a submission is in flight.
func (m *Model) Loading() bool { return m.loading }

// Err returns the error line.
func (m *Model) Err() string { return m.err }

// Done ends a submission and shows errMessage, which is empty on success.
func (m *Model) Done(errMessage string) {
	m.loading = false
	m.err = errMessage
}

// Reset clears every input and the error line.
func (m *Model) Reset() {
	for i := range m.fields {
		m.fields[i].input.Reset()
	}
	m.err = ""
	m.loading = false
	m.setFocus(0)
}

// Init returns the cursor blink command.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keyMap.Toggle):
			if m.loading {
				return m, nil
			}
			return m, func() tea.Msg { return ToggleMsg{} }

		case key.Matches(keyMsg, keyMap.Next):
			m.setFocus((m.focus + 1) % len(m.fields))
			return m, textinput.Blink

		case key.Matches(keyMsg, keyMap.Prev):
			m.setFocus((m.focus - 1 + len(m.fields)) % len(m.fields))
			return m, textinput.Blink

		case key.Matches(keyMsg, keyMap.Submit):
			return m, m.submit()
		}
		if m.loading {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

// submit emits the form when every field is filled. Empty fields are ignored silently.
func (m *Model) submit() tea.Cmd {
	if m.loading {
		return nil
	}
	values := make([]string, len(m.fields))
	for i, f := range m.fields {
		values[i] = f.input.Value()
		if strings.TrimSpace(values[i]) == "" {
			return nil
		}
	}

	submission := SubmitMsg{Kind: m.kind}
	if m.kind == Signup {
		submission.Username, values = values[0], values[1:]
	}
	submission.Email = values[0]
	submission.Password = values[1]

	m.loading = true
	m.err = ""
	return func() tea.Msg { return submission }
}

func (m *Model) setFocus(i int) {
	m.fields[m.focus].input.Blur()
	m.focus = i
	m.fields[m.focus].input.Focus()
}

// View renders the form.
func (m *Model) View() string {
	var b strings.Builder
	title, other := "Log in", "No account? Ctrl+S to sign up"
	if m.kind == Signup {
		title, other = "Sign up", "Have an account? Ctrl+S to log in"
	}
	b.WriteString(styles.FormTitleStyle.Render(title))
	b.WriteString("\n")
	for i, f := range m.fields {
		label := styles.LabelStyle
		if i == m.focus {
			label = styles.FocusedLabelStyle
		}
		b.WriteString(label.Render(f.label))
		b.WriteString("\n")
		b.WriteString(f.input.View())
		b.WriteString("\n")
	}
	switch {
	case m.loading:
		b.WriteString(styles.DimTextStyle.Render("Submitting..."))
	case m.err != "":
		b.WriteString(styles.ErrorStyle.Render(m.err))
	}
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Tab next field • Enter submit • " + other))
	return styles.FormStyle.Render(b.String())
}
