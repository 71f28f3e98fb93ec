package milestones

import (
	"context"
	"fmt"
	"time"
)

type fixedWindowStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type redisRateLimiter struct {
	store  fixedWindowStore
	limit  int64
	window time.Duration
}

// NewRedisRateLimiter builds a fixed-window decision limiter backed by redis.
func NewRedisRateLimiter(store fixedWindowStore, limit int, window time.Duration) (RateLimiter, error) {
	if store == nil {
		return nil, fmt.Errorf("rate limit store required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive")
	}
	if window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive")
	}
	return &redisRateLimiter{
		store:  store,
		limit:  int64(limit),
		window: window,
	}, nil
}

func (l *redisRateLimiter) Allow(ctx context.Context, scope string) (bool, error) {
	allowed, _, err := l.store.FixedWindowAllow(ctx, scope, l.limit, l.window)
	if err != nil {
		return false, err
	}
	return allowed, nil
}
