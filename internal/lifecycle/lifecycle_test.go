package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIsShuttingDown_DefaultFalse(t *testing.T) {
	SetShuttingDown(false)
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true, want false by default")
	}
}

func TestSetShuttingDown_Toggle(t *testing.T) {
	SetShuttingDown(true)
	defer SetShuttingDown(false)
	if !IsShuttingDown() {
		t.Error("IsShuttingDown() = false after SetShuttingDown(true), want true")
	}
	SetShuttingDown(false)
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true after SetShuttingDown(false), want false")
	}
}

func TestInFlightTracker_StartDone(t *testing.T) {
	var tr InFlightTracker
	tr.Start()
	tr.Start()
	if tr.Count() != 2 {
		t.Errorf("Count() = %d, want 2", tr.Count())
	}
	tr.Done()
	tr.Done()
	if tr.Count() != 0 {
		t.Errorf("Count() = %d, want 0", tr.Count())
	}
}

// TestInFlightTracker_WaitForZero verifies that WaitForZero returns once outstanding
// work completes.
func TestInFlightTracker_WaitForZero(t *testing.T) {
	var tr InFlightTracker
	tr.Start()
	go func() {
		time.Sleep(20 * time.Millisecond)
		tr.Done()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tr.WaitForZero(ctx, 5*time.Millisecond); err != nil {
		t.Fatalf("WaitForZero() error = %v", err)
	}
}

// TestInFlightTracker_WaitForZero_Timeout verifies that WaitForZero gives up when the
// context expires with work still outstanding.
func TestInFlightTracker_WaitForZero_Timeout(t *testing.T) {
	var tr InFlightTracker
	tr.Start()
	defer tr.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := tr.WaitForZero(ctx, 5*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForZero() error = %v, want context.DeadlineExceeded", err)
	}
}
