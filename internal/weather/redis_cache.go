package weather

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/namefreezers/weather-lookup-service/internal/weather/types"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "weatherstack:current:"

// CachingFetcher decorates another Fetcher with a Redis cache.
// Only successful lookups are cached; Redis failures fall through to inner.
type CachingFetcher struct {
	inner  Fetcher
	redis  redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingFetcher returns a Fetcher that first looks in Redis,
// falling back to inner on cache-miss.
func NewCachingFetcher(inner Fetcher, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachingFetcher {
	return &CachingFetcher{inner: inner, redis: rdb, ttl: ttl, logger: logger}
}

func cacheKey(city string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(city))
}

// FetchCurrent serves usable cached results and otherwise asks inner. Results
// the service would reject (no description) never enter the cache.
func (c *CachingFetcher) FetchCurrent(ctx context.Context, city string) (types.Weather, error) {
	key := cacheKey(city)
	if w, ok := c.cached(ctx, key); ok {
		c.logger.Debug("cache hit", zap.String("city", city))
		return w, nil
	}

	w, err := c.inner.FetchCurrent(ctx, city)
	if err != nil {
		return w, err
	}
	if _, ok := w.FirstDescription(); !ok {
		c.logger.Debug("not caching result without description", zap.String("key", key))
		return w, nil
	}
	c.store(ctx, key, w)
	return w, nil
}

// cached reports a miss for absent, unreadable or unusable entries, and when
// Redis itself fails.
func (c *CachingFetcher) cached(ctx context.Context, key string) (types.Weather, bool) {
	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return types.Weather{}, false
	case err != nil:
		c.logger.Warn("redis GET failed", zap.String("key", key), zap.Error(err))
		return types.Weather{}, false
	}

	var w types.Weather
	if err := json.Unmarshal(raw, &w); err != nil {
		c.logger.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return types.Weather{}, false
	}
	if _, ok := w.FirstDescription(); !ok || w.City == "" {
		c.logger.Warn("discarding incomplete cache entry", zap.String("key", key))
		return types.Weather{}, false
	}
	return w, true
}

func (c *CachingFetcher) store(ctx context.Context, key string, w types.Weather) {
	blob, err := json.Marshal(w)
	if err != nil {
		c.logger.Warn("encode cache entry failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, blob, c.ttl).Err(); err != nil {
		c.logger.Warn("redis SET failed", zap.String("key", key), zap.Error(err))
	}
}
