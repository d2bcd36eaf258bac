package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/namefreezers/weather-lookup-service/internal/config"
	"github.com/namefreezers/weather-lookup-service/internal/handlers"
	"github.com/namefreezers/weather-lookup-service/internal/logging"
	"github.com/namefreezers/weather-lookup-service/internal/repository"
	"github.com/namefreezers/weather-lookup-service/internal/services"
	"github.com/namefreezers/weather-lookup-service/internal/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("api: %v", err)
		stop()
		os.Exit(1)
	}
}

// run starts the API and blocks until ctx is cancelled. Any error while
// setting up is returned before the server starts listening.
func run(ctx context.Context) error {
	// 1) Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// 2) Initialize structured logger
	logger, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("cannot initialize logger: %w", err)
	}
	defer logger.Sync()

	// 3) Open the store; the service must not start without it
	db, err := repository.OpenDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", zap.String("driver", cfg.DatabaseDriver), zap.Error(err))
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Warn("failed to close database", zap.Error(cerr))
		}
	}()

	// 4) Build the weather fetcher (optionally cached)
	fetcher, closeFetcher, err := weather.BuildFetcher(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize weather fetcher", zap.Error(err))
		return fmt.Errorf("weather fetcher: %w", err)
	}
	defer closeFetcher()

	// 5) Wire up the service and router
	repo := repository.NewWeatherRepository(db, logger)
	svc := services.NewWeatherService(repo, fetcher, logger)
	router := handlers.NewRouter(svc, db, logger)

	// 6) Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// 7) Graceful shutdown
	logger.Info("shutting down API server", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("API server stopped")
	return nil
}
