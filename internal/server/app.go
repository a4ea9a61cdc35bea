// Package server wires the reference sync server: storage, the HTTP sync
// API and the gRPC health probe, shut down together when the context ends.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"github.com/dmitrijs2005/offlinefeed/internal/server/config"
	gs "github.com/dmitrijs2005/offlinefeed/internal/server/grpc"
	"github.com/dmitrijs2005/offlinefeed/internal/server/httpapi"
	"github.com/dmitrijs2005/offlinefeed/internal/server/migrations"
	"github.com/dmitrijs2005/offlinefeed/internal/server/repositories/syncentries"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	repo   syncentries.Repository
	health *gs.HealthServer
}

// NewApp opens storage. With no DSN entries live in memory.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	app := &App{config: c, logger: l.With("module", "server")}

	if c.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database configured, entries are kept in memory")
		app.repo = syncentries.NewMemoryRepository()
	} else {
		db, err := openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.repo = syncentries.NewPostgresRepository(db)
	}

	if c.GRPCAddr != "" {
		app.health = gs.NewHealthServer(c.GRPCAddr, l)
	}
	return app, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := provider.Up(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Run serves until ctx is cancelled or a listener fails.
func (app *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		return err
	}
	return app.serve(ctx, ln)
}

func (app *App) serve(ctx context.Context, ln net.Listener) error {
	var opts []httpapi.Option
	if app.config.SecretKey != "" {
		opts = append(opts, httpapi.WithSecret([]byte(app.config.SecretKey)))
	} else {
		app.logger.Warn(ctx, "no secret key configured, sync requests are not authenticated")
	}
	srv := &http.Server{
		Handler:           httpapi.New(app.repo, app.logger, opts...).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if app.health != nil {
		app.health.SetServing(true)
		g.Go(func() error { return app.health.Run(ctx) })
	}

	return g.Wait()
}

func (app *App) Close() error {
	if app.db != nil {
		return app.db.Close()
	}
	return nil
}
