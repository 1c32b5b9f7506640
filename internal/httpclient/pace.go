package httpclient

import (
	"context"
	"time"
)

// Sleeper pauses between requests. Tests replace it to record delays.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done, whichever comes first.
// It returns ctx.Err() when interrupted.
func Sleep(ctx context.Context, d time.Duration) error {
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
