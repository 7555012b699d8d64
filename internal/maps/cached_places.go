package maps

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"placemap/internal/metrics"
)

const cacheKeyPrefix = "placemap:provider:"

// CachedPlaces is a read-through Redis cache in front of a Provider. Nearby
// and text search responses are cached; details always go to the provider.
// Redis failures degrade to direct provider calls.
type CachedPlaces struct {
	next   Provider
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedPlaces(next Provider, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedPlaces {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedPlaces{next: next, redis: rdb, ttl: ttl, logger: logger}
}

func (c *CachedPlaces) Nearby(ctx context.Context, r NearbyRequest) ([]ExternalPlace, error) {
	key := cacheKey("nearby", fmt.Sprintf("%.5f|%.5f|%d|%s", r.Location.Lat, r.Location.Lng, clampRadius(r.RadiusMeters), r.Type))
	return c.readThrough(ctx, key, func() ([]ExternalPlace, error) {
		return c.next.Nearby(ctx, r)
	})
}

func (c *CachedPlaces) TextSearch(ctx context.Context, r TextSearchRequest) ([]ExternalPlace, error) {
	raw := strings.ToLower(strings.TrimSpace(r.Query))
	if r.Location != nil {
		raw += fmt.Sprintf("|%.5f|%.5f|%d", r.Location.Lat, r.Location.Lng, clampRadius(r.RadiusMeters))
	}
	return c.readThrough(ctx, cacheKey("text", raw), func() ([]ExternalPlace, error) {
		return c.next.TextSearch(ctx, r)
	})
}

func (c *CachedPlaces) Details(ctx context.Context, externalID string) (*Details, error) {
	return c.next.Details(ctx, externalID)
}

func (c *CachedPlaces) readThrough(ctx context.Context, key string, load func() ([]ExternalPlace, error)) ([]ExternalPlace, error) {
	if c.redis == nil {
		return load()
	}

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var out []ExternalPlace
		if jerr := json.Unmarshal([]byte(val), &out); jerr == nil {
			metrics.ProviderCache.WithLabelValues("hit").Inc()
			return out, nil
		}
		metrics.ProviderCache.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.ProviderCache.WithLabelValues("miss").Inc()
	default:
		metrics.ProviderCache.WithLabelValues("error").Inc()
		c.logger.Warn("provider cache read failed", zap.String("key", key), zap.Error(err))
	}

	out, err := load()
	if err != nil {
		return nil, err
	}
	// empty answers are not cached so a later call can pick up new listings
	if len(out) == 0 {
		return out, nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("provider cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

func cacheKey(kind, raw string) string {
	sum := sha1.Sum([]byte(raw))
	return cacheKeyPrefix + kind + ":" + hex.EncodeToString(sum[:])
}
