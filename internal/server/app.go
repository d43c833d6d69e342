// Package server wires the tasklist server together: storage, services, the
// session sweeper and the HTTP transport, plus signal-driven shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/config"
	"github.com/dmitrijs2005/tasklist/internal/server/httpserver"
	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	sweeper     *services.SessionSweeper
	httpServer  *httpserver.HTTPServer
}

func newRepositoryManager(c *config.Config) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		return repomanager.NewInMemoryRepositoryManager(), nil
	}
	return repomanager.NewPostgresRepositoryManager(c.DatabaseDSN)
}

func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewLogger(c.LogLevel, os.Stdout)
	if c.UsesDevSecret() {
		logger.Warn(context.Background(), "signing access tokens with the development secret key")
	}

	rm, err := newRepositoryManager(c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	mtr := metrics.New()

	issuer := auth.NewJWTIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration,
		auth.WithRefreshTokenBytes(c.RefreshTokenBytes))

	sessions := services.NewSessionService(rm, issuer, c.RefreshTokenValidityDuration,
		services.WithStoreTimeout(c.StoreTimeout),
		services.WithSessionMetrics(mtr),
		services.WithSessionLogger(logger.With("module", "sessions")),
	)

	users := services.NewUserService(rm, issuer, auth.NewBcryptHasher(c.BcryptCost), sessions, c.StoreTimeout)
	lists := services.NewListService(rm, c.StoreTimeout)

	sweeper := services.NewSessionSweeper(rm, c.SessionSweepInterval, mtr, logger.With("module", "session_sweeper"))

	hs := httpserver.NewHTTPServer(c.EndpointAddrHTTP, logger, httpserver.Deps{
		Users:              users,
		Lists:              lists,
		Sessions:           sessions,
		Issuer:             issuer,
		Store:              rm,
		Metrics:            mtr,
		CORSAllowedOrigins: c.CORSAllowedOrigins,
	})

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		sweeper:     sweeper,
		httpServer:  hs,
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Run migrates the store, starts the sweeper and serves HTTP until ctx is
// cancelled or a termination signal arrives. A failure of the HTTP server is
// returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	defer func() {
		if err := app.repomanager.Close(); err != nil {
			app.logger.Error(ctx, "error closing store", "error", err)
		}
	}()

	if err := app.repomanager.RunMigrations(ctx); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	app.sweeper.Start(ctx)
	defer app.sweeper.Stop()

	var (
		wg      sync.WaitGroup
		httpErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		httpErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return httpErr
}
