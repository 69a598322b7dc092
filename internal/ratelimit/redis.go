package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/context-service/pkg/utils"
)

const rateLimitKeyPrefix = "ratelimit:"

// RedisLimiter implements the same fixed-window semantics as MemoryLimiter
// on a shared Redis instance, so multiple service replicas enforce one
// combined quota per identifier.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter. Non-positive arguments
// fall back to the defaults.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// key hashes the identifier so arbitrary caller strings stay safe as Redis keys.
func (l *RedisLimiter) key(identifier string) string {
	return rateLimitKeyPrefix + utils.HashKey(identifier)
}

// Allow implements Limiter. The counter and its expiry are set in one
// pipeline; INCR creates the window, ExpireNX pins its reset time exactly
// once, and the TTL read reports the remaining window for denied callers.
func (l *RedisLimiter) Allow(ctx context.Context, identifier string) (Decision, error) {
	key := l.key(identifier)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit pipeline failed: %w", err)
	}

	count := int(incr.Val())
	resetAfter := ttl.Val()
	if resetAfter < 0 {
		resetAfter = l.window
	}

	if count > l.limit {
		return Decision{Allowed: false, Remaining: 0, ResetAfter: resetAfter}, nil
	}
	return Decision{Allowed: true, Remaining: l.limit - count, ResetAfter: resetAfter}, nil
}
