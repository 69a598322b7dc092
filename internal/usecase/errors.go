package usecase

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingURL indicates the caller supplied no URL to analyze.
	ErrMissingURL = errors.New("url is required")

	errNoGenerator = errors.New("no generator credential configured")
)

// RateLimitError reports a denied admission and when the caller's window resets.
type RateLimitError struct {
	ResetAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %s", e.ResetAfter.Round(time.Second))
}

// UpstreamError wraps a transport or credential failure talking to the
// generator. The pipeline never retries these; retry policy, if any, belongs
// to the caller.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream generator unavailable: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
