// Package server initializes and runs the gophauth account server.
// It opens the account store, builds the services and the access gate,
// handles graceful shutdown and serves the gRPC API.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/access"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/keylock"
	"github.com/dmitrijs2005/gophauth/internal/server/oauth"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/sessions"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    repomanager.RepositoryManager
	sessions *sessions.MemoryStore
	gate     *access.Gate
	services gs.Services
}

// openStore is a seam for tests.
var openStore = repomanager.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	hasher, err := credentials.NewHasher(c.DigestAlgorithm, c.PasswordPepper)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	store, err := openStore(ctx, c.StoreBackend, c.DatabaseDSN, c.RunMigrations)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	sessionStore := sessions.NewMemoryStore(c.SessionIdleTTL)
	locks := keylock.New()

	var exchanger services.CodeExchanger
	if c.OAuthEnabled() {
		exchanger = oauth.NewProvider(c)
	}

	auth := services.NewAuthService(store, hasher, sessionStore, logger)
	svc := gs.Services{
		Registration: services.NewRegistrationService(store, hasher, locks, logger),
		Auth:         auth,
		External:     services.NewExternalLoginService(store, auth, locks, exchanger, logger),
		Accounts:     services.NewAccountService(store, hasher, locks, logger),
		Avatars:      services.NewAvatarService(store, c, logger),
	}

	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		sessions: sessionStore,
		gate:     access.NewGate(auth, logger),
		services: svc,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, gs.MaxRecvMsgSize(app.config.AvatarMaxBytes), app.logger, app.gate, app.services)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a termination signal arrives, then
// closes the store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreBackend, "digest", app.config.DigestAlgorithm)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sessions.Run(ctx, app.config.SessionSweepInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "store close failed", "err", err)
	}
	app.logger.Info(ctx, "App stopped")
}
