package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold is the tracked-identifier count above which expired records
// are dropped during the next admission, bounding memory without a
// background goroutine.
const sweepThreshold = 1000

type record struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory. A single
// mutex guards the record table; windows are per identifier and replaced
// lazily once they elapse.
type MemoryLimiter struct {
	mu      sync.Mutex
	records map[string]*record
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewMemoryLimiter creates a limiter admitting at most limit requests per
// identifier per window. Non-positive arguments fall back to the defaults.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryLimiter{
		records: make(map[string]*record),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow implements Limiter. It never returns an error.
func (l *MemoryLimiter) Allow(_ context.Context, identifier string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[identifier]
	if !ok || !rec.resetAt.After(now) {
		l.sweepLocked(now)
		l.records[identifier] = &record{count: 1, resetAt: now.Add(l.window)}
		return Decision{Allowed: true, Remaining: l.limit - 1, ResetAfter: l.window}, nil
	}

	if rec.count < l.limit {
		rec.count++
		return Decision{Allowed: true, Remaining: l.limit - rec.count, ResetAfter: rec.resetAt.Sub(now)}, nil
	}
	return Decision{Allowed: false, Remaining: 0, ResetAfter: rec.resetAt.Sub(now)}, nil
}

// sweepLocked drops expired records once the table grows past the threshold.
// Live windows are never touched, so concurrent admission decisions for
// active identifiers are unaffected.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	if len(l.records) <= sweepThreshold {
		return
	}
	for id, rec := range l.records {
		if !rec.resetAt.After(now) {
			delete(l.records, id)
		}
	}
}
