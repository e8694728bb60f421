package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts requests per key in fixed time windows.
// Key format: ratelimit:<name>:<principal>:<window_start_unix>
type FixedWindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewFixedWindowLimiter allows limit requests per principal in each window.
func NewFixedWindowLimiter(client *redis.Client, limit int, window time.Duration) *FixedWindowLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow increments the counter for (name, principal) in the current window.
// It returns whether the request is allowed and, when it is not, how long
// until the window resets. A limit <= 0 disables limiting.
func (l *FixedWindowLimiter) Allow(ctx context.Context, name, principal string) (bool, time.Duration, error) {
	if l.limit <= 0 {
		return true, 0, nil
	}

	now := l.now()
	start := now.Truncate(l.window)
	key := l.key(name, principal, start)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit: %w", err)
	}

	if incr.Val() > int64(l.limit) {
		return false, start.Add(l.window).Sub(now), nil
	}
	return true, 0, nil
}

func (l *FixedWindowLimiter) key(name, principal string, start time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", name, principal, start.Unix())
}
