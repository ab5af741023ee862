package ratelimit

import (
	"context"
	"time"
)

// DefaultCleanupInterval is how often the janitor sweeps when no interval is given.
const DefaultCleanupInterval = 5 * time.Minute

// StartJanitor runs Cleanup every interval until ctx is cancelled. The
// returned channel is closed once the goroutine has exited.
func (l *Limiter) StartJanitor(ctx context.Context, every time.Duration) <-chan struct{} {
	if every <= 0 {
		every = DefaultCleanupInterval
	}

	done := make(chan struct{})
	t := time.NewTicker(every)
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup(ctx)
			}
		}
	}()
	return done
}
