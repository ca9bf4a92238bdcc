package utils

import (
	"context"
	"time"
)

// WaitFor blocks for d or until ctx is done. The timer is released on
// cancellation so no wakeup is left pending.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
