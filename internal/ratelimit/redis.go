// Package ratelimit provides a Redis-backed store for echo's rate limiter middleware.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix
	rateLimitPrefix = "ratelimit:"

	redisTimeout = 500 * time.Millisecond
)

// RedisStore counts requests per client in fixed windows shared through Redis,
// so every API instance enforces the same budget.
type RedisStore struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

// NewRedisStore creates a store allowing limit requests per client in each window
func NewRedisStore(redis *redis.Client, limit int, window time.Duration) *RedisStore {
	return &RedisStore{redis: redis, limit: limit, window: window}
}

// Allow implements middleware.RateLimiterStore
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	key := rateLimitPrefix + identifier

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// A key without TTL is a new window, or one whose expiry was never set.
	if ttl.Val() < 0 {
		if err := s.redis.Expire(ctx, key, s.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	count := incr.Val()
	return count <= int64(s.limit), nil
}
