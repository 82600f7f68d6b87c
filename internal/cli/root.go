// Package cli holds the tulisify command tree: the serve command and the
// client commands that talk to a running server through presenters.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tulisify/tulisify/internal/config"
	"github.com/tulisify/tulisify/internal/container"
	"github.com/tulisify/tulisify/internal/tokenstore"
)

// Options configures the command tree.
type Options struct {
	Config  *config.Config
	Version string

	// Tokens overrides the client token store. Nil opens the encrypted
	// SQLite store at Config.Client.DatabasePath.
	Tokens tokenstore.Store
}

// session is the client graph a command runs against.
type session struct {
	app   *container.Container
	close func()
}

type app struct {
	opts Options
}

// NewRootCommand builds the tulisify command with all subcommands.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Config == nil {
		opts.Config = config.NewConfig()
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "tulisify",
		Short:         "Tulisify digital library",
		Long:          "Tulisify serves a digital library of books and PDFs and manages it from the command line.",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.Config.Client.APIBaseURL, "api-url", opts.Config.Client.APIBaseURL, "Base URL of the Tulisify API")

	root.AddCommand(
		newServeCommand(a),
		newLoginCommand(a),
		newRegisterCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newBooksCommand(a),
	)
	return root
}

func (a *app) session() (*session, error) {
	cfg := a.opts.Config.Client
	if a.opts.Tokens != nil {
		return &session{app: container.NewRemote(cfg, a.opts.Tokens), close: func() {}}, nil
	}

	store, err := tokenstore.New(tokenstore.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}
	return &session{
		app:   container.NewRemote(cfg, store),
		close: func() { _ = store.Close() },
	}, nil
}

// withSession opens a client session for the duration of fn.
func (a *app) withSession(fn func(s *session) error) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

// failed turns a presenter error message into a command error.
func failed(msg string) error {
	if msg == "" {
		msg = "request failed"
	}
	return errors.New(msg)
}
