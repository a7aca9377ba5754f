package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	l := NewMemoryLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "owner-1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should pass", i+1)
	}

	ok, retryAfter, err := l.Allow(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Hour)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Hour)
	ctx := context.Background()

	ok, _, _ := l.Allow(ctx, "owner-1")
	assert.True(t, ok)
	ok, _, _ = l.Allow(ctx, "owner-1")
	assert.False(t, ok)

	ok, _, _ = l.Allow(ctx, "owner-2")
	assert.True(t, ok, "another key has its own window")
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	ok, _, _ := l.Allow(ctx, "owner-1")
	assert.True(t, ok)
	ok, _, _ = l.Allow(ctx, "owner-1")
	assert.False(t, ok)

	l.now = func() time.Time { return base.Add(time.Minute) }
	ok, _, _ = l.Allow(ctx, "owner-1")
	assert.True(t, ok, "a new window starts fresh")
}

func TestMemoryLimiterConcurrentAttempts(t *testing.T) {
	// 50 goroutines race; exactly limit of them may pass.
	l := NewMemoryLimiter(10, time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := l.Allow(ctx, "owner-1")
			require.NoError(t, err)
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}
