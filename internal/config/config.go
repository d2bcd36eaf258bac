package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported values for DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Config holds all the environment-driven settings for the application.
type Config struct {
	// HTTP
	Port            string        `env:"PORT"             envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database. DatabaseURL is a file path for sqlite and a DSN for pgx.
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL"    envDefault:"weather.db"`

	// Weatherstack. The key is not validated here; a missing key shows up
	// as a provider failure on the first lookup.
	WeatherstackAPIKey  string `env:"WEATHERSTACK_API_KEY"`
	WeatherstackBaseURL string `env:"WEATHERSTACK_BASE_URL" envDefault:"http://api.weatherstack.com"`

	// Redis cache in front of the provider. Empty RedisAddr disables it.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"WEATHER_CACHE_TTL" envDefault:"5m"`

	// Refresher
	RefreshSchedule string `env:"REFRESH_SCHEDULE" envDefault:"*/30 * * * *"`

	LogDevelopment bool `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// Load reads an optional .env file, then parses the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want %q or %q",
			cfg.DatabaseDriver, DriverSQLite, DriverPostgres)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("invalid WEATHER_CACHE_TTL %s: must be positive", cfg.CacheTTL)
	}

	return &cfg, nil
}

// CacheEnabled reports whether lookups should go through Redis.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
