// Package ratelimit paces calls to external collaborators.
package ratelimit

import (
	"context"
	"time"
)

// Limiter enforces a minimum interval between consecutive calls. It is the
// backpressure mechanism protecting collaborators from rate limits; a zero
// interval disables it. Not safe for concurrent use; each stage owns its own
// limiter.
type Limiter struct {
	interval time.Duration
	last     time.Time

	// overridable in tests to avoid real wall-clock sleeping
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// New creates a limiter with the given minimum inter-call interval.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous Wait, or until ctx is cancelled. The first call never blocks.
func (l *Limiter) Wait(ctx context.Context) {
	if l == nil || l.interval <= 0 {
		return
	}
	now := l.now()
	if !l.last.IsZero() {
		if remaining := l.interval - now.Sub(l.last); remaining > 0 {
			l.sleep(ctx, remaining)
			now = l.now()
		}
	}
	l.last = now
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
