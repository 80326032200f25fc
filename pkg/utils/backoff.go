package utils

import (
	"context"
	"math"
	"time"
)

// Backoff computes exponential delays for bounded retry loops, such as
// callback delivery and commit-capability calls.
type Backoff struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// NewBackoff creates a backoff handler with sensible defaults.
func NewBackoff() *Backoff {
	return &Backoff{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   60 * time.Second,
	}
}

// DelayFor returns the delay preceding the given 1-based attempt.
func (b *Backoff) DelayFor(attempt int) time.Duration {
	if attempt <= 1 {
		return b.BaseDelay
	}
	d := time.Duration(float64(b.BaseDelay) * math.Pow(2, float64(attempt-1)))
	if d > b.MaxDelay {
		d = b.MaxDelay
	}
	return d
}

// Sleep waits for the attempt's delay or until the context is done.
func (b *Backoff) Sleep(ctx context.Context, attempt int) error {
	t := time.NewTimer(b.DelayFor(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
