// Package tui is the root controller of the terminal client. It owns the workspace and routes
// messages between the credential forms, the upload widget, the chat panel and the sidebar.
package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malonaz/pdfchat/cli/tui/chatbox"
	"github.com/malonaz/pdfchat/cli/tui/forms"
	"github.com/malonaz/pdfchat/cli/tui/sidebar"
	"github.com/malonaz/pdfchat/cli/tui/styles"
	"github.com/malonaz/pdfchat/cli/tui/upload"
	"github.com/malonaz/pdfchat/internal/configuration"
	"github.com/malonaz/pdfchat/internal/debug"
	"github.com/malonaz/pdfchat/internal/history"
	"github.com/malonaz/pdfchat/internal/markdown"
	"github.com/malonaz/pdfchat/internal/workspace"
)

var log *slog.Logger

// FocusedComponent is the pane receiving key presses.
type FocusedComponent int

const (
	FocusChat FocusedComponent = iota
	FocusSidebar
	FocusUpload
)

// Model represents the Bubble Tea model for the whole client.
type Model struct {
	ctx       context.Context
	config    *configuration.Config
	workspace *workspace.Workspace

	// Components
	login   *forms.Model
	signup  *forms.Model
	upload  *upload.Model
	chat    *chatbox.Model
	sidebar *sidebar.Model

	// UI state
	focusedComponent FocusedComponent
	sidebarVisible   bool
	authenticated    bool
	width            int
	height           int
	ready            bool
	quitting         bool
}

// New creates the root model. Uploads browse from startDir.
func New(
	ctx context.Context,
	config *configuration.Config,
	ws *workspace.Workspace,
	hist *history.History,
	startDir string,
) (*Model, error) {
	log = debug.GetLogger()

	renderer, err := markdown.NewRenderer(styles.DefaultTextareaWidth)
	if err != nil {
		return nil, err
	}
	m := &Model{
		ctx:            ctx,
		config:         config,
		workspace:      ws,
		login:          forms.New(forms.Login),
		signup:         forms.New(forms.Signup),
		upload:         upload.New(startDir),
		chat:           chatbox.New(hist, renderer),
		sidebar:        sidebar.New(config.Chat.DateFormat, config.Chat.SidebarWidth),
		sidebarVisible: true,
		authenticated:  ws.Authenticated(),
	}
	return m, nil
}

// Init initializes the model. A restored session loads its sessions straight away.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.login.Init(),
		m.upload.Init(),
		m.chat.Init(),
	}
	if m.authenticated {
		cmds = append(cmds, m.chat.Focus(), m.loadSessions())
	}
	return tea.Batch(cmds...)
}

// form returns the credential form currently shown.
func (m *Model) form() *forms.Model {
	if m.workspace.ShowSignup() {
		return m.signup
	}
	return m.login
}

func (m *Model) formFor(kind forms.Kind) *forms.Model {
	if kind == forms.Signup {
		return m.signup
	}
	return m.login
}
