package chat

import (
	"fmt"
	"strings"

	"github.com/buger/goterm"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/internal/markdown"
	"github.com/malonaz/pdfchat/internal/workspace"
)

// NewAskCmd instantiates and returns the ask command.
func NewAskCmd(provider *app.Provider) *cobra.Command {
	var opts struct {
		Raw bool
		New bool
	}
	cmd := &cobra.Command{
		Use:   "ask QUERY...",
		Short: "Send a single query and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := provider.Get()
			if err != nil {
				return err
			}
			if err := a.RequireLogin(); err != nil {
				return err
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			task := a.Workspace.Chat(query)
			if task == nil {
				return errors.New("query is empty")
			}
			if opts.New {
				if message := workspace.ErrorMessage(a.Workspace.Run(ctx, a.Workspace.NewSession())); message != "" {
					return errors.New(message)
				}
				task = a.Workspace.Chat(query)
			}
			outcome := a.Workspace.Run(ctx, task)
			if message := workspace.ErrorMessage(outcome); message != "" {
				return errors.New(message)
			}
			a.History().Add(query)

			response := outcome.(*workspace.ChatOutcome).Reply.Response
			if !opts.Raw {
				renderer, err := markdown.NewRenderer(goterm.Width())
				if err != nil {
					return errors.Wrap(err, "creating renderer")
				}
				response = renderer.Render(-1, response)
			}
			fmt.Fprintln(cmd.OutOrStdout(), response)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Raw, "raw", "r", false, "Print the reply without markdown rendering")
	cmd.Flags().BoolVarP(&opts.New, "new", "n", false, "Start a new session before asking")
	return cmd
}
