package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_CountsDownThenDenies(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		d, err := l.Allow(ctx, "caller")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, want, d.Remaining)
	}

	d, err := l.Allow(ctx, "caller")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.ResetAfter, time.Duration(0))
}

func TestMemoryLimiter_IdentifiersAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	d, _ := l.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "a")
	assert.False(t, d.Allowed)

	d, _ = l.Allow(ctx, "b")
	assert.True(t, d.Allowed)
}

func TestMemoryLimiter_WindowExpiryReadmits(t *testing.T) {
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return current }
	ctx := context.Background()

	d, _ := l.Allow(ctx, "caller")
	require.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "caller")
	require.False(t, d.Allowed)

	// Just short of the boundary: still denied.
	current = current.Add(time.Minute - time.Millisecond)
	d, _ = l.Allow(ctx, "caller")
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Millisecond, d.ResetAfter)

	// At the boundary the window is replaced.
	current = current.Add(time.Millisecond)
	d, _ = l.Allow(ctx, "caller")
	assert.True(t, d.Allowed)
	assert.Equal(t, time.Minute, d.ResetAfter)
}

func TestMemoryLimiter_SweepDropsExpiredRecords(t *testing.T) {
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, time.Minute)
	l.now = func() time.Time { return current }
	ctx := context.Background()

	for i := 0; i < sweepThreshold+10; i++ {
		_, err := l.Allow(ctx, fmt.Sprintf("caller-%d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, sweepThreshold+10, len(l.records))

	// All windows elapse; the next admission triggers the sweep.
	current = current.Add(2 * time.Minute)
	_, err := l.Allow(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, len(l.records))
}

func TestMemoryLimiter_SweepKeepsLiveWindows(t *testing.T) {
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, time.Hour)
	l.now = func() time.Time { return current }
	ctx := context.Background()

	for i := 0; i < sweepThreshold+10; i++ {
		_, err := l.Allow(ctx, fmt.Sprintf("caller-%d", i))
		require.NoError(t, err)
	}

	// Windows are still live, so the sweep removes nothing.
	current = current.Add(time.Minute)
	_, err := l.Allow(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, sweepThreshold+11, len(l.records))
}

func TestMemoryLimiter_ConcurrentCallersStayWithinLimit(t *testing.T) {
	const limit = 20
	l := NewMemoryLimiter(limit, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _ := l.Allow(ctx, "shared")
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, limit, allowed)
}

func TestNewMemoryLimiter_DefaultsOnNonPositiveArgs(t *testing.T) {
	l := NewMemoryLimiter(0, 0)
	assert.Equal(t, DefaultLimit, l.limit)
	assert.Equal(t, DefaultWindow, l.window)
}
