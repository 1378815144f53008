package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit"

// RedisLimiter is a fixed-window limiter whose counters live in Redis, so
// every instance behind a load balancer shares them.
type RedisLimiter struct {
	client *redis.Client
	name   string
	limit  int
	period time.Duration
	clock  clock.Clock
}

// NewRedisLimiter creates a limiter storing counters under
// "ratelimit:<name>:<key>".
func NewRedisLimiter(client *redis.Client, name string, limit int, period time.Duration, clk clock.Clock) *RedisLimiter {
	if clk == nil {
		clk = clock.New()
	}
	return &RedisLimiter{
		client: client,
		name:   name,
		limit:  limit,
		period: period,
		clock:  clk,
	}
}

// Allow increments the counter for key, starting a new window on the first
// hit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := fmt.Sprintf("%s:%s:%s", keyPrefix, l.name, key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, redisKey, l.period).Err(); err != nil {
			return Result{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	ttl, err := l.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read rate limit window: %w", err)
	}
	// A key without expiry would never reset; repair it.
	if ttl < 0 {
		if err := l.client.PExpire(ctx, redisKey, l.period).Err(); err != nil {
			return Result{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
		ttl = l.period
	}

	return newResult(int(count), l.limit, l.clock.Now().Add(ttl)), nil
}
