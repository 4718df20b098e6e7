// Package outcome keeps sliding windows of fetch outcomes for the health endpoint.
package outcome

import (
	"sync"
	"time"
)

// maxAge bounds how long timestamps are kept; windows longer than this undercount.
const maxAge = 5 * time.Minute

// Counts is the number of each outcome within a window.
type Counts struct {
	Applied   int `json:"applied"`
	Failed    int `json:"failed"`
	Discarded int `json:"discarded"`
}

// Tracker maintains sliding windows of outcome timestamps. The zero value is ready to use.
type Tracker struct {
	mu             sync.Mutex
	now            func() time.Time
	appliedTimes   []time.Time
	failedTimes    []time.Time
	discardedTimes []time.Time
}

// RecordApplied records a response that replaced the result.
func (t *Tracker) RecordApplied() {
	t.record(&t.appliedTimes)
}

// RecordFailed records a fetch that returned an error.
func (t *Tracker) RecordFailed() {
	t.record(&t.failedTimes)
}

// RecordDiscarded records a stale response that was dropped.
func (t *Tracker) RecordDiscarded() {
	t.record(&t.discardedTimes)
}

// Window returns the outcome counts within window.
func (t *Tracker) Window(window time.Duration) Counts {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.clock().Add(-window)
	return Counts{
		Applied:   countInWindow(t.appliedTimes, cutoff),
		Failed:    countInWindow(t.failedTimes, cutoff),
		Discarded: countInWindow(t.discardedTimes, cutoff),
	}
}

func (t *Tracker) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

func (t *Tracker) record(slice *[]time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	*slice = append(*slice, now)
	t.pruneLocked(now)
}

// countInWindow counts timestamps that are not before the cutoff time.
func countInWindow(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}

// pruneLocked drops timestamps older than maxAge. Must be called with mu held.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-maxAge)
	prune := func(slice *[]time.Time) {
		times := *slice
		i := 0
		for ; i < len(times) && times[i].Before(cutoff); i++ {
		}
		if i > 0 {
			*slice = append(times[:0], times[i:]...)
		}
	}
	prune(&t.appliedTimes)
	prune(&t.failedTimes)
	prune(&t.discardedTimes)
}
