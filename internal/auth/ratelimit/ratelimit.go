// Package ratelimit implements a fixed-window request limiter backed by a
// shared counter store, so independently-invoked front-door instances
// enforce one combined limit per principal.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Counter is the shared windowed counter, satisfied by the Redis client.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter enforces a per-key request limit over a fixed window.
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	logger  *slog.Logger
}

// New creates a Limiter allowing limit requests per window for each key.
func New(counter Counter, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
		logger:  slog.Default().With("component", "ratelimit"),
	}
}

// Allow reports whether the key has remaining capacity in the current
// window, consuming one unit. Counter errors fail open: a broken limiter
// store must not take the front door down with it.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	count, err := l.counter.IncrWindow(ctx, l.windowKey(key), l.window)
	if err != nil {
		l.logger.Error("counter unavailable, allowing request", "key", key, "error", err)
		return true
	}
	return count <= int64(l.limit)
}

func (l *Limiter) windowKey(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}
