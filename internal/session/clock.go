package session

import (
	"context"
	"time"
)

// Clock abstracts time for the polling loops so tests can simulate elapsed
// time without real delays.
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is cancelled, returning ctx.Err()
	// in the latter case. Every wait loop in this package sleeps through
	// here, which is what makes cancellation "stop polling" rather than
	// "undo": a gesture already sent to the OS stays sent.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
