package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts events per key in fixed windows
type RateLimiter interface {
	// Allow records one event and reports whether the key is still within its limit.
	// When it is not, retryAfter is the time left until the window resets.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type rateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter allows limit events per window for each key. A limit <= 0 allows everything.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) RateLimiter {
	return &rateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (l *rateLimiter) key(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}

func (l *rateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l.limit <= 0 {
		return true, 0, nil
	}

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// the window starts with the first event; later events never extend it
		pipe.SetNX(ctx, l.key(key), 0, l.window)
		incr = pipe.Incr(ctx, l.key(key))
		ttl = pipe.PTTL(ctx, l.key(key))
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	if incr.Val() <= int64(l.limit) {
		return true, 0, nil
	}

	retryAfter := ttl.Val()
	if retryAfter <= 0 || retryAfter > l.window {
		retryAfter = l.window
	}
	return false, retryAfter, nil
}
