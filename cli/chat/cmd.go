// Package chat implements the interactive chat and one-shot ask commands.
package chat

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/cli/tui"
	"github.com/malonaz/pdfchat/cli/tui/chatbox"
	"github.com/malonaz/pdfchat/internal/debug"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(provider *app.Provider) *cobra.Command {
	var opts struct {
		Plain bool
		New   bool
	}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with your PDFs",
		Long:  "Opens the full-screen client. With --plain, runs a line-oriented chat in the current terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := provider.Get()
			if err != nil {
				return err
			}

			if opts.Plain {
				if err := a.RequireLogin(); err != nil {
					return err
				}
				return runREPL(ctx, a, opts.New)
			}

			if err := chatbox.InitClipboard(); err != nil {
				debug.GetLogger().Warn("clipboard unavailable", "error", err)
			}
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			m, err := tui.New(ctx, a.Config, a.Workspace, a.History(), dir)
			if err != nil {
				return err
			}

			// Create the Bubble Tea program
			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running chat: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "Line-oriented chat instead of the full-screen client")
	cmd.Flags().BoolVarP(&opts.New, "new", "n", false, "Start a new session before chatting (plain mode)")
	return cmd
}
