// Package application wires configuration into a running import service:
// database pool, store, object storage, plan cache and the core service.
// The server and the CLI share it so both run the same pipeline.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/virex/internal/config"
	"github.com/JonMunkholm/virex/internal/core"
	"github.com/JonMunkholm/virex/internal/objstore"
	"github.com/JonMunkholm/virex/internal/plancache"
	"github.com/JonMunkholm/virex/internal/store"
)

// App holds the long-lived dependencies of the import service.
type App struct {
	Config  *config.Config
	Pool    *pgxpool.Pool
	Store   *store.Queries
	Service *core.Service

	closers []func() error
}

// Option adjusts New.
type Option func(*options)

type options struct {
	migrate bool
}

// WithMigrate applies the schema after connecting, regardless of
// DB_AUTO_MIGRATE.
func WithMigrate() Option {
	return func(o *options) { o.migrate = true }
}

// New connects to every configured backend and builds the service.
// Close releases what New opened, also when New fails part way.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (app *App, err error) {
	o := options{migrate: cfg.Database.AutoMigrate}
	for _, opt := range opts {
		opt(&o)
	}

	app = &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	if app.Pool, err = OpenPool(ctx, cfg.Database); err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() error { app.Pool.Close(); return nil })

	app.Store = store.New(app.Pool)
	if o.migrate {
		if err = app.Store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		slog.Info("schema applied")
	}

	svcOpts := core.Options{
		Store:            app.Store,
		Limiter:          core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		ImportTimeout:    cfg.Import.Timeout,
		MaxFileSize:      cfg.Import.MaxFileSize,
		MaxDownloadSize:  cfg.Import.MaxDownloadSize,
		StrictValidation: cfg.Import.StrictValidation,
		ArchiveUploads:   cfg.Import.ArchiveUploads,
		PlanTTL:          cfg.Import.PlanTTL,
	}

	if cfg.Storage.Enabled() {
		objects, err := objstore.NewClient(ctx, objstore.Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			UsePathStyle:    cfg.Storage.UsePathStyle,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("object storage: %w", err)
		}
		svcOpts.Objects = objects
		slog.Info("object storage enabled", "bucket", objects.Bucket())
	}

	if cfg.Cache.RedisAddr != "" {
		plans, err := plancache.NewRedis(ctx, plancache.RedisConfig{
			Address:  cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			Database: cfg.Cache.RedisDB,
			Timeout:  cfg.Cache.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("plan cache: %w", err)
		}
		app.closers = append(app.closers, plans.Close)
		svcOpts.Plans = plans
		slog.Info("plan cache: redis", "addr", cfg.Cache.RedisAddr)
	} else {
		svcOpts.Plans = plancache.NewMemory()
		slog.Info("plan cache: in-memory")
	}

	if app.Service, err = core.NewService(svcOpts); err != nil {
		return nil, err
	}
	return app, nil
}

// Health reports whether the database answers.
func (a *App) Health(ctx context.Context) error {
	return a.Store.Ping(ctx)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenPool creates a pgx pool from cfg and verifies the connection.
func OpenPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("connected to database", "name", DatabaseName(cfg.URL))
	return pool, nil
}

// DatabaseName returns the database part of a connection URL, or "" when
// the URL cannot be parsed.
func DatabaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
