package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/mercato/internal"
	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/events"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/dukerupert/mercato/internal/router"
	"github.com/dukerupert/mercato/internal/service"
	"github.com/dukerupert/mercato/internal/telemetry"
	"github.com/dukerupert/mercato/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return err
	}
	defer flushSentry()

	// database/sql handle for goose and the schema version probe.
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqlDB.Close()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := internal.RunMigrations(ctx, sqlDB, logger); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.Enabled {
		conn, err := events.ConnectNATS(cfg.NATS.URL, logger)
		if err != nil {
			return err
		}
		defer events.DrainNATS(conn, logger)
		publisher = events.NewNATSPublisher(conn, logger)
		logger.Info("Publishing domain events to NATS", "url", cfg.NATS.URL)
	}

	deps := service.Deps{
		Logger:    logger,
		Metrics:   telemetry.NewLedgerMetrics(prometheus.DefaultRegisterer, cfg.Metrics.Namespace),
		Publisher: publisher,
		Retry: service.RetryPolicy{
			MaxRetries: uint64(cfg.Conflict.MaxRetries),
			Delay:      cfg.Conflict.RetryDelay,
		},
	}

	ledger := service.NewLedger(store, service.LedgerConfig{
		Currency:        cfg.Store.Currency,
		PaymentProvider: cfg.Store.PaymentProvider,
		Addresses:       address.NewBasicValidator(),
	}, deps)

	if cfg.Sweeper.Enabled {
		sweeper := worker.NewCartSweeper(store, ledger.Carts, worker.Config{
			PollInterval: cfg.Sweeper.Interval,
			IdleAfter:    cfg.Sweeper.IdleAfter,
		}, logger)
		go func() {
			if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Cart sweeper stopped", "error", err)
			}
		}()
	}

	ops := router.NewOps(router.OpsConfig{
		Logger:   logger,
		DB:       store,
		Gatherer: prometheus.DefaultGatherer,
		Metrics:  router.NewHTTPMetrics(prometheus.DefaultRegisterer, cfg.Metrics.Namespace),
		SchemaVersion: func(ctx context.Context) (int64, error) {
			return internal.MigrationVersion(ctx, sqlDB)
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           ops,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Ops server listening", "address", srv.Addr, "env", cfg.Env)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
