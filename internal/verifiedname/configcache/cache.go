// Package configcache provides a read-through cache for the per-user
// "use verified name for certificates" flag. Reads hit Redis first and fall
// back to the store; config writes must call Invalidate for the affected user.
package configcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"nameaffirm/internal/platform/metrics"
	"nameaffirm/internal/verifiedname"
	"nameaffirm/pkg/platform/circuit"
	"nameaffirm/pkg/platform/sentinel"
)

// Redis key prefix for cached certificate flags
const certsFlagKeyPrefix = "vnc:certs:"

// While the breaker is open a single trial read goes to Redis at most this
// often, so the cache re-enables itself after Redis recovers.
const redisProbeInterval = 30 * time.Second

// Source is the authoritative lookup behind the cache.
type Source interface {
	CurrentConfig(ctx context.Context, userID string) (*verifiedname.Config, error)
}

// Cache is a Redis-backed read-through cache of the certs flag. A nil Redis
// client degrades to direct store lookups so local wiring works without
// Redis. A circuit breaker keeps a failing Redis from slowing every flag
// read: while open, reads skip Redis except for a periodic trial read that
// closes the breaker once Redis answers again. Redis trouble never fails a
// read that the store could answer.
type Cache struct {
	client  *redis.Client
	source  Source
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	breaker *circuit.Breaker
}

// New constructs a Cache. client may be nil.
func New(client *redis.Client, source Source, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		client:  client,
		source:  source,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
		breaker: circuit.New("configcache-redis",
			circuit.WithFailureThreshold(5),
			circuit.WithProbeInterval(redisProbeInterval),
		),
	}
}

// UseVerifiedNameForCerts returns the user's current flag, defaulting to
// false when the user has no config rows.
func (c *Cache) UseVerifiedNameForCerts(ctx context.Context, userID string) (bool, error) {
	useRedis := c.client != nil && c.breaker.Allow()

	if useRedis {
		cached, err := c.client.Get(ctx, certsFlagKeyPrefix+userID).Result()
		switch {
		case err == nil:
			c.redisHealthy(ctx)
			c.recordHit()
			return cached == "1", nil
		case errors.Is(err, redis.Nil):
			// a plain miss still counts as a healthy round trip
			c.redisHealthy(ctx)
		default:
			c.redisFailed(ctx, "read cached certs flag", err)
			useRedis = false
		}
		c.recordMiss()
	}

	value, err := c.lookup(ctx, userID)
	if err != nil {
		return false, err
	}

	if useRedis {
		marker := "0"
		if value {
			marker = "1"
		}
		// the store already answered, so a failed write only degrades caching
		if err := c.client.Set(ctx, certsFlagKeyPrefix+userID, marker, c.ttl).Err(); err != nil {
			c.redisFailed(ctx, "cache certs flag", err)
		}
	}
	return value, nil
}

// Invalidate drops the cached flag for the user. Call after every config
// write.
func (c *Cache) Invalidate(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, certsFlagKeyPrefix+userID).Err(); err != nil {
		c.redisFailed(ctx, "invalidate certs flag", err)
		return fmt.Errorf("invalidate certs flag: %w", err)
	}
	c.redisHealthy(ctx)
	return nil
}

func (c *Cache) lookup(ctx context.Context, userID string) (bool, error) {
	cfg, err := c.source.CurrentConfig(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup current config: %w", err)
	}
	return cfg.UseVerifiedNameForCerts, nil
}

func (c *Cache) redisFailed(ctx context.Context, op string, err error) {
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.logger.WarnContext(ctx, "redis circuit opened, certs flag reads fall back to the store",
			"breaker", c.breaker.Name(), "error", err)
		return
	}
	c.logger.DebugContext(ctx, "redis error on certs flag cache",
		"breaker", c.breaker.Name(), "op", op, "error", err)
}

func (c *Cache) redisHealthy(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "redis circuit closed, certs flag cache re-enabled",
			"breaker", c.breaker.Name())
	}
}

func (c *Cache) recordHit() {
	if c.metrics != nil {
		c.metrics.ConfigCacheHits.Inc()
	}
}

func (c *Cache) recordMiss() {
	if c.metrics != nil {
		c.metrics.ConfigCacheMisses.Inc()
	}
}
