// Package account implements the login, signup and logout commands.
package account

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/internal/cli"
	"github.com/malonaz/pdfchat/internal/workspace"
)

// askCredentials is swapped in tests.
var askCredentials = cli.AskCredentials

// NewLoginCmd instantiates and returns the login command.
func NewLoginCmd(provider *app.Provider) *cobra.Command {
	var opts struct {
		Email    string
		Password string
	}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := provider.Get()
			if err != nil {
				return err
			}
			if opts.Email == "" || opts.Password == "" {
				credentials, err := askCredentials(false)
				if err != nil {
					return err
				}
				opts.Email, opts.Password = credentials.Email, credentials.Password
			}
			if err := authenticate(cmd, a, a.Workspace.Login(opts.Email, opts.Password)); err != nil {
				return err
			}
			cli.Success("Logged in as %s\n", opts.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Account password (prompted when empty)")
	return cmd
}

// NewSignupCmd instantiates and returns the signup command.
func NewSignupCmd(provider *app.Provider) *cobra.Command {
	var opts struct {
		Username string
		Email    string
		Password string
	}
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and store the session token",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := provider.Get()
			if err != nil {
				return err
			}
			if opts.Username == "" || opts.Email == "" || opts.Password == "" {
				credentials, err := askCredentials(true)
				if err != nil {
					return err
				}
				opts.Username, opts.Email, opts.Password = credentials.Username, credentials.Email, credentials.Password
			}
			if err := authenticate(cmd, a, a.Workspace.Signup(opts.Username, opts.Email, opts.Password)); err != nil {
				return err
			}
			cli.Success("Signed up as %s\n", opts.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Account password (prompted when empty)")
	return cmd
}

// NewLogoutCmd instantiates and returns the logout command.
func NewLogoutCmd(provider *app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := provider.Get()
			if err != nil {
				return err
			}
			a.Workspace.Logout()
			cli.Success("Logged out\n")
			return nil
		},
	}
}

func authenticate(cmd *cobra.Command, a *app.App, task workspace.Task) error {
	outcome := a.Workspace.Run(cmd.Context(), task)
	if outcome == nil {
		return errors.New("every field is required")
	}
	if message := workspace.ErrorMessage(outcome); message != "" {
		return errors.New(message)
	}
	return nil
}
