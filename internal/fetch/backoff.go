package fetch

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff computes the delay before retry attempts. Delays grow
// exponentially from Base and are capped at Max, so a struggling server is
// not hammered.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff returns the engine's default retry delays.
func DefaultBackoff() Backoff {
	return Backoff{
		Base: time.Second,
		Max:  30 * time.Second,
	}
}

// Delay returns the deterministic floor delay before the given attempt
// (attempt 2 is the first retry). Jitter is added on top of this floor at
// sleep time, never subtracted, so delays between consecutive uncapped
// attempts are strictly increasing.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := b.Base << uint(attempt-2)
	if d > b.Max || d <= 0 {
		d = b.Max
	}
	return d
}

// Sleep waits the jittered delay before the given attempt, returning early
// with the context error on cancellation.
func (b Backoff) Sleep(ctx context.Context, attempt int) error {
	d := b.Delay(attempt)
	if d <= 0 {
		return nil
	}
	d += time.Duration(rand.Int64N(int64(d)/4 + 1))

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
