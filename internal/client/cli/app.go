// Package cli implements accountctl, the command-line client for the
// gophauth account service.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/spf13/cobra"
)

// App carries the state shared by all commands of one invocation.
type App struct {
	configPath  string
	addr        string
	sessionFile string

	cfg      *config.Config
	api      API
	sessions *session.FileStore
	in       *bufio.Reader
	out      io.Writer
}

func NewApp() *App {
	return &App{}
}

// connect loads the configuration, applies flag overrides and dials the
// server with the saved session handle attached.
func (a *App) connect(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.ServerEndpointAddr = a.addr
	}
	if flags.Changed("session-file") {
		cfg.SessionFile = a.sessionFile
	}
	a.cfg = cfg
	a.sessions = session.NewFileStore(cfg.SessionFile)

	handle, err := a.sessions.Load()
	if err != nil {
		return err
	}

	api, err := dial(cfg.ServerEndpointAddr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.ServerEndpointAddr, err)
	}
	api.SetSession(handle)
	a.api = api
	return nil
}

// run wraps fn into a cobra RunE that connects first, bounds the call by
// the configured timeout and closes the connection afterwards.
func (a *App) run(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.connect(cmd); err != nil {
			return err
		}
		defer a.api.Close()

		a.in = bufio.NewReader(cmd.InOrStdin())
		a.out = cmd.OutOrStdout()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if a.cfg.CallTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.cfg.CallTimeout)
			defer cancel()
		}
		return fn(ctx, cmd, args)
	}
}

// adoptSession saves the handle the server issued, if any.
func (a *App) adoptSession() error {
	h := a.api.Session()
	if h == "" {
		return nil
	}
	return a.sessions.Save(h)
}
