// Package ratelimit provides per-identifier fixed-window request throttling.
// The store sits behind the Limiter interface so the in-process map can be
// swapped for the Redis-backed implementation in multi-instance deployments.
//
// This is an availability control, not a security boundary: identifiers are
// whatever stable string the caller derives (typically a client IP) and are
// accepted as-is.
package ratelimit

import (
	"context"
	"time"
)

// Default window parameters.
const (
	DefaultLimit  = 20
	DefaultWindow = time.Minute
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
}

// Limiter decides whether a request from the given identifier is admitted
// into the current window. The check itself counts: an admitted request
// consumes quota even if the work it guards later fails.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (Decision, error)
}
