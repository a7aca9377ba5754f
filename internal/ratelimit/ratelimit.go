// Package ratelimit provides the per-owner creation throttle. The check and
// the increment happen in one atomic step so concurrent requests from the
// same owner cannot double-book the limit.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates creation attempts per key over a fixed window.
type Limiter interface {
	// Allow records an attempt for key and reports whether it is within the
	// limit. When the limit is exceeded, retryAfter says how long until the
	// current window resets.
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration, err error)
}

// MemoryLimiter is a single-process fixed-window limiter. The Postgres
// limiter in the repository package is the production implementation; this
// one backs tests and single-node deployments without shared state.
type MemoryLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*memWindow

	now func() time.Time
}

type memWindow struct {
	start time.Time
	count int
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*memWindow),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	start := now.Truncate(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[key]
	if w == nil || !w.start.Equal(start) {
		w = &memWindow{start: start}
		l.windows[key] = w
	}

	w.count++
	if w.count > l.limit {
		return false, start.Add(l.window).Sub(now), nil
	}
	return true, 0, nil
}
