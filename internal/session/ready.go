package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Ready is a one-shot readiness future. The backing store resolves it
// exactly once when it can serve requests; callers wait with a bounded
// timeout instead of polling at an interval.
type Ready struct {
	once sync.Once
	ch   chan struct{}
}

func NewReady() *Ready {
	return &Ready{ch: make(chan struct{})}
}

// Resolve marks the dependency ready. Subsequent calls are no-ops.
func (r *Ready) Resolve() {
	r.once.Do(func() { close(r.ch) })
}

// Wait blocks until Resolve, the timeout, or ctx cancellation. A timeout
// surfaces as ErrNotReady; callers present it as a retry-later condition.
func (r *Ready) Wait(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.ch:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrNotReady, timeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNotReady, ctx.Err())
	}
}
