package weather

import (
	"context"
	"fmt"
	"net/http"

	"github.com/namefreezers/weather-lookup-service/internal/config"
	"github.com/namefreezers/weather-lookup-service/internal/weather/weatherstack"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BuildFetcher constructs the Fetcher used by the service:
// 1) the Weatherstack client on the default HTTP transport
// 2) optionally decorated with a Redis cache when REDIS_ADDR is set
//
// The returned close func releases the Redis client, if any.
func BuildFetcher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Fetcher, func() error, error) {
	base := weatherstack.NewClient(cfg, http.DefaultClient)
	if cfg.WeatherstackAPIKey == "" {
		logger.Warn("WEATHERSTACK_API_KEY is not set; lookups will fail")
	}

	if !cfg.CacheEnabled() {
		logger.Info("weather cache disabled")
		return base, func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("weather cache enabled",
		zap.String("redisAddr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.CacheTTL),
	)
	return NewCachingFetcher(base, rdb, cfg.CacheTTL, logger), rdb.Close, nil
}
