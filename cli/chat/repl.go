package chat

import (
	"context"
	"io"
	"strings"

	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/internal/cli"
	"github.com/malonaz/pdfchat/internal/markdown"
	"github.com/malonaz/pdfchat/internal/workspace"
)

// runREPL reads queries until EOF or an interrupt, printing each reply as it arrives.
func runREPL(ctx context.Context, a *app.App, newSession bool) error {
	renderer, err := markdown.NewRenderer(goterm.Width())
	if err != nil {
		return errors.Wrap(err, "creating renderer")
	}
	if newSession {
		if message := workspace.ErrorMessage(a.Workspace.Run(ctx, a.Workspace.NewSession())); message != "" {
			return errors.New(message)
		}
	}

	hist := a.History()
	cli.Title("PDF Chat")
	cli.Dim("Ctrl+J sends, Ctrl+D exits\n")
	for {
		query, err := cli.PromptUser(hist.Entries())
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		hist.Add(query)

		outcome := a.Workspace.Run(ctx, a.Workspace.Chat(query))
		if !a.Workspace.Authenticated() {
			cli.Error("Your session expired. Log in again with `pdfchat login`.\n")
			return app.ErrNotLoggedIn
		}
		if message := workspace.ErrorMessage(outcome); message != "" {
			cli.Error("Error: %s\n", message)
			continue
		}
		cli.Separator()
		cli.BotOutput(renderer.Render(-1, outcome.(*workspace.ChatOutcome).Reply.Response) + "\n")
		cli.Separator()
	}
}
