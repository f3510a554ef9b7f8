// Package app wires configuration, local storage, the session context and the backend client
// into the object every command runs against.
package app

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/auth"
	"github.com/malonaz/pdfchat/internal/configuration"
	"github.com/malonaz/pdfchat/internal/debug"
	"github.com/malonaz/pdfchat/internal/history"
	"github.com/malonaz/pdfchat/internal/workspace"
	"github.com/malonaz/pdfchat/store"
)

// Opts are the global command line options.
type Opts struct {
	ConfigPath string
	BackendURL string
}

type App struct {
	Config    *configuration.Config
	Store     *store.Store
	Session   *auth.Session
	Client    *api.Client
	Workspace *workspace.Workspace
}

// NewApp loads the configuration, opens local storage and restores the stored token.
func NewApp(opts *Opts) (*App, error) {
	config, err := configuration.Parse(opts.ConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "parsing configuration")
	}
	if opts.BackendURL != "" {
		if err := config.SetBackendURL(opts.BackendURL); err != nil {
			return nil, errors.Wrap(err, "overriding backend url")
		}
	}
	if err := debug.Init(config.LogFile); err != nil {
		return nil, errors.Wrap(err, "initializing logger")
	}
	log := debug.GetLogger()

	s, err := store.New(config.Database)
	if err != nil {
		return nil, errors.Wrap(err, "opening store")
	}

	session := auth.NewSession(s)
	if err := session.Restore(); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "restoring session")
	}
	client := api.New(config.BackendURL, session, api.WithTimeout(config.Timeout()))
	log.Info("starting", "backend", config.BackendURL, "authenticated", session.Active())

	return &App{
		Config:  config,
		Store:   s,
		Session: session,
		Client:  client,
		Workspace: workspace.New(client, session, workspace.Config{
			MaxUploadBytes: config.Upload.MaxBytes,
			SkipValidation: config.Upload.SkipValidation,
		}),
	}, nil
}

// History returns the input history persisted in the store.
func (a *App) History() *history.History {
	return history.New(a.Store, a.Config.Chat.HistorySize)
}

// Close releases the store and the log file.
func (a *App) Close() error {
	err := a.Store.Close()
	if closeErr := debug.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Provider builds the App on first use, once command line flags are parsed.
type Provider struct {
	opts *Opts

	once sync.Once
	app  *App
	err  error
}

// NewProvider returns a provider reading opts when first asked for the App.
func NewProvider(opts *Opts) *Provider {
	return &Provider{opts: opts}
}

// Get returns the App, building it on the first call.
func (p *Provider) Get() (*App, error) {
	p.once.Do(func() {
		p.app, p.err = NewApp(p.opts)
	})
	return p.app, p.err
}

// Close closes the App if it was built.
func (p *Provider) Close() error {
	if p.app == nil {
		return nil
	}
	return p.app.Close()
}

// ErrNotLoggedIn is returned by commands needing a session when none is stored.
var ErrNotLoggedIn = errors.New("not logged in, run `pdfchat login` first")

// RequireLogin fails with ErrNotLoggedIn when no token is held.
func (a *App) RequireLogin() error {
	if !a.Workspace.Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}
