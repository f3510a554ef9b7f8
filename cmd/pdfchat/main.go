package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/malonaz/pdfchat/app"
	"github.com/malonaz/pdfchat/cli/account"
	"github.com/malonaz/pdfchat/cli/chat"
	"github.com/malonaz/pdfchat/cli/history"
	"github.com/malonaz/pdfchat/cli/sessions"
	"github.com/malonaz/pdfchat/cli/upload"
	"github.com/malonaz/pdfchat/internal/configuration"
)

func newRootCmd(opts *app.Opts, provider *app.Provider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pdfchat",
		Short:         "Chat with your PDF documents",
		Version:       "1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", configuration.DefaultPath, "Configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.BackendURL, "backend", "", "Backend base URL, overriding the configuration")

	rootCmd.AddCommand(account.NewLoginCmd(provider))
	rootCmd.AddCommand(account.NewSignupCmd(provider))
	rootCmd.AddCommand(account.NewLogoutCmd(provider))
	rootCmd.AddCommand(chat.NewCmd(provider))
	rootCmd.AddCommand(chat.NewAskCmd(provider))
	rootCmd.AddCommand(upload.NewCmd(provider))
	rootCmd.AddCommand(sessions.NewCmd(provider))
	rootCmd.AddCommand(history.NewCmd(provider))
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := &app.Opts{}
	provider := app.NewProvider(opts)
	err := newRootCmd(opts, provider).ExecuteContext(ctx)
	// The App is built lazily by whichever command ran; CheckErr exits without running defers.
	if closeErr := provider.Close(); err == nil {
		err = closeErr
	}
	cobra.CheckErr(err)
}
