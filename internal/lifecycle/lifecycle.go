// Package lifecycle tracks process shutdown state and in-flight work.
package lifecycle

import (
	"context"
	"sync/atomic"
	"time"
)

var shuttingDown atomic.Bool

// SetShuttingDown sets the shutdown flag. Health returns 503 shutting-down while true.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown returns true once the process has started draining.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// InFlightTracker counts units of work in progress (HTTP requests, weather fetches).
// The zero value is ready to use.
type InFlightTracker struct {
	count atomic.Int64
}

// Start records one unit of work. Pair with Done.
func (t *InFlightTracker) Start() {
	t.count.Add(1)
}

func (t *InFlightTracker) Done() {
	t.count.Add(-1)
}

func (t *InFlightTracker) Count() int64 {
	return t.count.Load()
}

// WaitForZero polls every checkInterval until the count reaches zero or ctx is done.
func (t *InFlightTracker) WaitForZero(ctx context.Context, checkInterval time.Duration) error {
	if checkInterval <= 0 {
		checkInterval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		if t.Count() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
