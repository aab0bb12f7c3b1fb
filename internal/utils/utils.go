// Package utils holds small helpers shared across packages.
package utils

import (
	"context"
	"time"
)

// WaitFor blocks for d or until ctx is cancelled, whichever comes
// first. Cancellation surfaces as the context's error.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
