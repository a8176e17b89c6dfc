// Package server wires configuration, storage, services and transports into
// a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/projectkeeper/internal/cryptox"
	"github.com/dmitrijs2005/projectkeeper/internal/logging"
	"github.com/dmitrijs2005/projectkeeper/internal/server/auth"
	"github.com/dmitrijs2005/projectkeeper/internal/server/config"
	"github.com/dmitrijs2005/projectkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/projectkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/projectkeeper/internal/server/rest"
	"github.com/dmitrijs2005/projectkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/projectkeeper/internal/server/grpc"
)

// App owns the servers and the database handle for one process run.
type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *rest.Server
	grpcServer *gs.GRPCServer
}

// NewApp builds the application. A non-empty DatabaseDSN selects PostgreSQL
// (migrations are applied here); otherwise data lives in memory.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	var (
		db  *sql.DB
		rm  repomanager.RepositoryManager
		err error
	)
	if c.DatabaseDSN != "" {
		db, err = repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		logger.Info(ctx, "Using PostgreSQL storage")
	} else {
		rm = repomanager.NewInMemoryRepositoryManager()
		logger.Warn(ctx, "No database DSN configured, using in-memory storage")
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return newApp(c, logger, rm, db), nil
}

func newApp(c *config.Config, logger logging.Logger, rm repomanager.RepositoryManager, db *sql.DB) *App {
	registry := metrics.NewRegistry()
	m := metrics.NewMetrics(registry)

	tokens := auth.NewTokenManager([]byte(c.SecretKey))
	hasher := cryptox.NewBcryptHasher(c.BcryptCost)

	us := services.NewUserService(rm.Users(db), hasher, tokens, logger)
	ps := services.NewProjectService(rm.Projects(db), logger)

	httpServer := rest.NewServer(rest.Options{
		Addr:            c.HTTPAddr,
		CORSOrigins:     c.CORSOrigins,
		ShutdownTimeout: c.ShutdownTimeout,
		Gatherer:        prometheus.Gatherer(registry),
	}, us, ps, tokens, m, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: httpServer,
		grpcServer: gs.NewGRPCServer(c.GRPCAddr, logger, tokens),
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives or either server fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.httpServer.Run(gctx)
	})
	g.Go(func() error {
		return app.grpcServer.Run(gctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return errors.Join(err, app.Close())
}

// Close releases the database pool, if any.
func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}
