package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubCounter struct {
	count int64
	err   error
}

func (s *stubCounter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.count++
	return s.count, nil
}

func TestAllowWithinLimit(t *testing.T) {
	l := New(&stubCounter{}, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "user") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, "user") {
		t.Error("request over limit should be blocked")
	}
}

// A broken counter store must not take the front door down.
func TestAllowFailsOpenOnCounterError(t *testing.T) {
	l := New(&stubCounter{err: errors.New("connection refused")}, 1, time.Minute)

	if !l.Allow(context.Background(), "user") {
		t.Error("expected fail-open when counter is unavailable")
	}
}
