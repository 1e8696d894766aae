package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/handlers"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
	"github.com/SscSPs/ledger_core/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
	"github.com/SscSPs/ledger_core/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// storage is the persistence side of one server run.
type storage struct {
	repos portsrepo.RepositoryProvider
	ready handlers.ReadinessChecker
	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("Using in-memory storage; the ledger is lost on exit")
		return &storage{
			repos: memory.NewRepositoryProvider(memory.NewStore()),
			close: func() {},
		}, nil
	}

	if cfg.RunMigrations {
		migrationDB, err := database.OpenSQL(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(migrationDB, cfg.MigrationsPath, database.Up, logger); err != nil {
			return nil, err
		}
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	readyDB, err := database.OpenSQL(cfg.DatabaseURL)
	if err != nil {
		database.ClosePgxPool(dbPool)
		return nil, err
	}
	readyDB.SetMaxOpenConns(1)

	return &storage{
		repos: pgsql.NewRepositoryProvider(dbPool, cfg.TxMaxRetries),
		ready: readyDB,
		close: func() {
			if err := readyDB.Close(); err != nil {
				logger.Error("Error closing readiness DB connection", slog.String("error", err.Error()))
			}
			database.ClosePgxPool(dbPool)
		},
	}, nil
}

func newRouter(cfg *config.Config, logger *slog.Logger, store *storage, m *metrics.Metrics) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), middleware.Metrics(m))
	if cfg.RateLimit != "" {
		lim, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return nil, err
		}
		r.Use(middleware.RateLimit(lim))
	}
	r.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	container := services.NewServiceContainer(cfg, store.repos, m)
	handlers.RegisterRoutes(r, cfg, container, handlers.Probes{Ready: store.ready, Metrics: m.Handler()})
	return r, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		return err
	}
	defer store.close()

	m := metrics.New(prometheus.NewRegistry())
	m.RegisterBuildInfo(version)
	m.RegisterLineCount(store.repos.JournalRepo.CountLines)

	r, err := newRouter(cfg, logger, store, m)
	if err != nil {
		logger.Error("Failed to build router", slog.String("error", err.Error()))
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
