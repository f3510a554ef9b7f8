// Package sessions implements the commands managing chat sessions.
package sessions

import (
	"fmt"
	"strconv"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/buger/goterm"
	"github.com/pkg/errors"
	"github.com/scylladb/go-set/i64set"
	"github.com/spf13/cobra"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/cli"
	"github.com/malonaz/pdfchat/internal/markdown"
	"github.com/malonaz/pdfchat/internal/workspace"
)

const defaultTemplate = `{{ printf "%-6d" .ID }} {{ .Created }}  {{ .Title | trunc 60 }}`

// confirm is swapped in tests.
var confirm = cli.QueryUser

// row is what the list template sees for each session.
type row struct {
	ID        int64
	Title     string
	Created   string
	CreatedAt time.Time
}

// NewCmd instantiates and returns the sessions command.
func NewCmd(provider *app.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage chat sessions",
	}
	cmd.AddCommand(
		newListCmd(provider),
		newNewCmd(provider),
		newShowCmd(provider),
		newDeleteCmd(provider),
	)
	return cmd
}

func loggedIn(provider *app.Provider) (*app.App, error) {
	a, err := provider.Get()
	if err != nil {
		return nil, err
	}
	if err := a.RequireLogin(); err != nil {
		return nil, err
	}
	return a, nil
}

func newListCmd(provider *app.Provider) *cobra.Command {
	var opts struct {
		Template string
	}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sessions, newest first",
		Args:    cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := template.New("session").Funcs(sprig.TxtFuncMap()).Parse(opts.Template)
			if err != nil {
				return errors.Wrap(err, "parsing template")
			}
			a, err := loggedIn(provider)
			if err != nil {
				return err
			}
			outcome := a.Workspace.Run(cmd.Context(), a.Workspace.ListSessions())
			if message := workspace.ErrorMessage(outcome); message != "" {
				return errors.New(message)
			}

			out := cmd.OutOrStdout()
			for _, session := range outcome.(*workspace.ListSessionsOutcome).Sessions {
				r := &row{
					ID:        session.ID,
					Title:     session.Title,
					Created:   session.CreatedAt.Format(a.Config.Chat.DateFormat),
					CreatedAt: session.CreatedAt.Time,
				}
				if err := tmpl.Execute(out, r); err != nil {
					return errors.Wrapf(err, "rendering session %d", session.ID)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Template, "template", "t", defaultTemplate, "Go template rendered per session (sprig functions available)")
	return cmd
}

func newNewCmd(provider *app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create an empty session; the next query goes to it",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loggedIn(provider)
			if err != nil {
				return err
			}
			outcome := a.Workspace.Run(cmd.Context(), a.Workspace.NewSession())
			if message := workspace.ErrorMessage(outcome); message != "" {
				return errors.New(message)
			}
			session := outcome.(*workspace.NewSessionOutcome).Session
			fmt.Fprintln(cmd.OutOrStdout(), session.ID)
			return nil
		},
	}
}

func newShowCmd(provider *app.Provider) *cobra.Command {
	var opts struct {
		Raw bool
	}
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print the messages of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := loggedIn(provider)
			if err != nil {
				return err
			}
			outcome := a.Workspace.Run(cmd.Context(), a.Workspace.SelectSession(id))
			if message := workspace.ErrorMessage(outcome); message != "" {
				return errors.New(message)
			}

			if opts.Raw {
				out := cmd.OutOrStdout()
				for _, entry := range a.Workspace.Transcript() {
					fmt.Fprintf(out, "> %s\n%s\n\n", entry.User, entry.Bot)
				}
				return nil
			}

			renderer, err := markdown.NewRenderer(goterm.Width())
			if err != nil {
				return errors.Wrap(err, "creating renderer")
			}
			for i, entry := range a.Workspace.Transcript() {
				cli.UserInput("> %s\n", entry.User)
				cli.BotOutput(renderer.Render(i, entry.Bot) + "\n")
				cli.Separator()
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Raw, "raw", "r", false, "Print responses without markdown rendering")
	return cmd
}

func newDeleteCmd(provider *app.Provider) *cobra.Command {
	var opts struct {
		Yes bool
	}
	cmd := &cobra.Command{
		Use:     "delete ID...",
		Aliases: []string{"rm"},
		Short:   "Delete sessions and their messages",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			a, err := loggedIn(provider)
			if err != nil {
				return err
			}
			if !opts.Yes && !confirm(fmt.Sprintf("Delete %d session(s)?", len(ids))) {
				return nil
			}

			failed := 0
			for _, id := range ids {
				outcome := a.Workspace.Run(cmd.Context(), a.Workspace.DeleteSession(id))
				if message := workspace.ErrorMessage(outcome); message != "" {
					if api.IsUnauthorized(outcome.(*workspace.DeleteSessionOutcome).Err) {
						return app.ErrNotLoggedIn
					}
					failed++
					cli.Error("session %d: %s\n", id, message)
					continue
				}
				cli.Success("Deleted session %d\n", id)
			}
			if failed > 0 {
				return errors.Errorf("%d of %d deletions failed", failed, len(ids))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid session id %q", arg)
	}
	return id, nil
}

// parseIDs parses every argument, dropping repeats while keeping the given order.
func parseIDs(args []string) ([]int64, error) {
	seen := i64set.New()
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		if seen.Has(id) {
			continue
		}
		seen.Add(id)
		ids = append(ids, id)
	}
	return ids, nil
}
