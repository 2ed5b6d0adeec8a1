package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles per-user API traffic with a fixed one-minute
// window counted in Redis, shared across server instances.
type RateLimiter struct {
	client *Client
	limit  int64
}

// NewRateLimiter creates a rate limiter allowing requestsPerMinute
// sustained requests plus a burst allowance on top.
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  int64(requestsPerMinute + burst),
	}
}

// Allow records one request for userID and reports whether it fits the
// current window. It returns the remaining allowance and the time the
// window resets.
func (r *RateLimiter) Allow(ctx context.Context, userID string) (bool, int, time.Time, error) {
	key := fmt.Sprintf("ratelimit:%s", userID)
	resetAt := time.Now().Truncate(time.Minute).Add(time.Minute)

	pipe := r.client.rdb.Pipeline()
	count := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to check rate limit: %w", err)
	}

	used := count.Val()
	remaining := r.limit - used
	if remaining < 0 {
		remaining = 0
	}

	return used <= r.limit, int(remaining), resetAt, nil
}
