package redis

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mshenfield/cleansweep/internal/domain"
)

//go:embed scripts/sliding_window.lua
var slidingWindowLua string

// waitPollInterval is how often Wait re-checks an exhausted window.
const waitPollInterval = 250 * time.Millisecond

// RateLimiter implements domain.RateLimiter with a sliding window shared
// across processes, backed by a Redis sorted set and an atomic Lua script.
type RateLimiter struct {
	rdb           *redis.Client
	slidingWindow *redis.Script
	key           string
	limit         int
	window        time.Duration
}

// NewRateLimiter creates a RateLimiter enforcing limit requests per window
// under the given key.
func NewRateLimiter(c *Client, key string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:           c.Underlying(),
		slidingWindow: redis.NewScript(slidingWindowLua),
		key:           "ratelimit:" + key,
		limit:         limit,
		window:        window,
	}
}

// allow counts one request if the window has room, returning whether it was
// admitted.
func (rl *RateLimiter) allow(ctx context.Context) (bool, error) {
	result, err := rl.slidingWindow.Run(
		ctx,
		rl.rdb,
		[]string{rl.key},
		time.Now().UnixMicro(),
		rl.window.Microseconds(),
		rl.limit,
	).Int64Slice()
	if err != nil {
		return false, fmt.Errorf("redis: rate limit %s: %w", rl.key, err)
	}
	if len(result) < 2 {
		return false, fmt.Errorf("redis: rate limit %s: unexpected result length %d", rl.key, len(result))
	}
	return result[0] == 1, nil
}

// Wait blocks until a request is admitted, polling at a fixed interval. It
// returns early only when ctx is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		allowed, err := rl.allow(ctx)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		timer := time.NewTimer(waitPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("redis: rate limit wait %s: %w", rl.key, ctx.Err())
		case <-timer.C:
		}
	}
}

// Compile-time interface check.
var _ domain.RateLimiter = (*RateLimiter)(nil)
