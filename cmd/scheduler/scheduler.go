package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-lookup-service/internal/config"
	"github.com/namefreezers/weather-lookup-service/internal/logging"
	"github.com/namefreezers/weather-lookup-service/internal/repository"
	"github.com/namefreezers/weather-lookup-service/internal/services"
	"github.com/namefreezers/weather-lookup-service/internal/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("scheduler: %v", err)
		stop()
		os.Exit(1)
	}
}

// run refreshes every stored city on cfg.RefreshSchedule until ctx ends.
func run(ctx context.Context) error {
	// 1) Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// 2) Init logger
	logger, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("cannot initialize logger: %w", err)
	}
	defer logger.Sync()

	// 3) Open DB
	db, err := repository.OpenDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// 4) Wire up repository, weather fetcher and service
	fetcher, closeFetcher, err := weather.BuildFetcher(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize weather fetcher", zap.Error(err))
		return fmt.Errorf("weather fetcher: %w", err)
	}
	defer closeFetcher()

	svc := services.NewWeatherService(repository.NewWeatherRepository(db, logger), fetcher, logger)

	// 5) Build cron (standard 5-field, minute resolution). A run that is
	// still busy when the next tick fires makes that tick skip.
	cronLog := newCronLogger(logger)
	c := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.SkipIfStillRunning(cronLog)))
	if _, err := c.AddFunc(cfg.RefreshSchedule, refreshJob(ctx, svc, logger)); err != nil {
		logger.Error("unable to schedule cron job", zap.String("cronSpec", cfg.RefreshSchedule), zap.Error(err))
		return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", cfg.RefreshSchedule, err)
	}

	logger.Info("starting scheduler", zap.String("cronSpec", cfg.RefreshSchedule))
	c.Start()

	<-ctx.Done()

	// Wait for a running refresh to notice the cancelled context and finish.
	logger.Info("stopping scheduler")
	<-c.Stop().Done()
	return nil
}

func refreshJob(ctx context.Context, svc services.WeatherService, logger *zap.Logger) func() {
	return func() {
		report, err := svc.RefreshAll(ctx)
		if err != nil {
			logger.Error("refresh run failed", zap.Error(err))
			return
		}
		logger.Info("refresh run completed",
			zap.Int("total", report.Total),
			zap.Int("refreshed", report.Refreshed),
			zap.Int("failed", report.Failed),
		)
	}
}

// cronLogger routes cron's own messages (skipped ticks, recovered panics)
// through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func newCronLogger(logger *zap.Logger) cron.Logger {
	return cronLogger{s: logger.Named("cron").Sugar()}
}

// Info is demoted to debug; cron logs every wake-up at this level.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
