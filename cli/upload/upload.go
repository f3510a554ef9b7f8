// Package upload implements the upload command.
package upload

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/internal/cli"
	"github.com/malonaz/pdfchat/internal/workspace"
)

// NewCmd instantiates and returns the upload command.
func NewCmd(provider *app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload PDFs to be indexed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := provider.Get()
			if err != nil {
				return err
			}
			if err := a.RequireLogin(); err != nil {
				return err
			}
			failed := 0
			for _, path := range args {
				outcome := a.Workspace.Run(cmd.Context(), a.Workspace.Upload(path))
				if message := workspace.ErrorMessage(outcome); message != "" {
					failed++
					cli.Error("%s: %s\n", path, message)
					if !a.Workspace.Authenticated() {
						return app.ErrNotLoggedIn
					}
					continue
				}
				cli.FileInfo("%s: ", path)
				cli.Success("%s\n", outcome.(*workspace.UploadOutcome).Message)
			}
			if failed > 0 {
				return errors.Errorf("%d of %d uploads failed", failed, len(args))
			}
			return nil
		},
	}
}
