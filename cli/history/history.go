// Package history implements the commands over the backend's stored queries.
package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/cli/tui/styles"
	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/cli"
)

// NewCmd instantiates and returns the history command.
func NewCmd(provider *app.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and prune stored queries",
	}
	cmd.AddCommand(newListCmd(provider), newDeleteCmd(provider))
	return cmd
}

func newListCmd(provider *app.Provider) *cobra.Command {
	var opts struct {
		Limit int
	}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored queries, newest first",
		Args:    cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := provider.Get()
			if err != nil {
				return err
			}
			if err := a.RequireLogin(); err != nil {
				return err
			}
			messages, err := a.Client.ListChatHistory(cmd.Context())
			if err != nil {
				return backendError(a, err, "Could not load the history.")
			}
			if opts.Limit > 0 && len(messages) > opts.Limit {
				messages = messages[:opts.Limit]
			}
			out := cmd.OutOrStdout()
			for _, m := range messages {
				fmt.Fprintf(out, "%-6d %s  %s\n", m.ID, m.Timestamp.Format(a.Config.Chat.DateFormat), oneLine(m.Message))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "Show at most this many entries (0 shows all)")
	return cmd
}

func newDeleteCmd(provider *app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID...",
		Aliases: []string{"rm"},
		Short:   "Delete stored queries",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return errors.Errorf("invalid history id %q", arg)
				}
				ids = append(ids, id)
			}
			a, err := provider.Get()
			if err != nil {
				return err
			}
			if err := a.RequireLogin(); err != nil {
				return err
			}
			for _, id := range ids {
				message, err := a.Client.DeleteChatHistory(cmd.Context(), id)
				if err != nil {
					return backendError(a, err, "Could not delete the entry.")
				}
				cli.Success("%d: %s\n", id, message)
			}
			return nil
		},
	}
}

// backendError ends the session on a 401 and otherwise surfaces the backend's detail.
func backendError(a *app.App, err error, fallback string) error {
	if api.IsUnauthorized(err) {
		a.Workspace.Logout()
		return app.ErrNotLoggedIn
	}
	return errors.New(api.ErrorText(err, fallback))
}

// oneLine collapses whitespace and truncates to 72 runes.
func oneLine(s string) string {
	return styles.Truncate(strings.Join(strings.Fields(s), " "), 72)
}
