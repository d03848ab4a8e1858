package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/fleetdesk/internal/config"
	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/core/datasets" // Registers the fleet datasets
	"github.com/JonMunkholm/fleetdesk/internal/logging"
	"github.com/JonMunkholm/fleetdesk/internal/settings"
	"github.com/JonMunkholm/fleetdesk/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_source", cfg.Data.Source,
		"settings_driver", cfg.Settings.Driver,
		"exports_max_concurrent", cfg.Query.MaxConcurrentExports,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// db stays a nil interface unless a pool is opened
	var db core.DBTX
	if cfg.NeedsDatabase() {
		pool, err := connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		db = pool
	}

	var source core.RowSource
	if strings.EqualFold(cfg.Data.Source, config.SourcePostgres) {
		source = core.NewPgSource(db)
	} else {
		source = core.NewStaticSource(datasets.DemoRows())
		slog.Info("serving demo data")
	}

	store, err := settings.Open(ctx, cfg, db)
	if err != nil {
		slog.Error("failed to open settings store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	service := core.NewService(source, cfg)

	// Log registered datasets
	slog.Info("datasets registered",
		"count", core.DatasetCount(),
		"groups", len(core.Groups()),
	)
	for _, group := range core.Groups() {
		slog.Debug("dataset group", "group", group, "datasets", len(core.ByGroup(group)))
	}

	server, err := web.NewServer(service, store, cfg)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for running exports to complete (with timeout)
		if status := service.ExportStatus(); status.Active > 0 {
			slog.Info("waiting for exports to complete", "active", status.Active)
			if err := service.WaitForExports(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			} else {
				slog.Info("all exports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// connect opens and verifies the Postgres pool.
func connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
