// Package perf drives performance testing of the sequential updater:
// single timed trials, parallel multi-trial runs behind a pluggable dispatch
// abstraction, progress reporting, and persistence of performance records.
package perf

import "time"

// Timer measures the wall time of a block. Query DeltaT before Stop for the
// running elapsed time, or after Stop for the frozen one.
type Timer struct {
	tic     time.Time
	toc     time.Time
	stopped bool
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{tic: time.Now()}
}

// Stop freezes the timer. Subsequent calls have no effect.
func (t *Timer) Stop() {
	if !t.stopped {
		t.toc = time.Now()
		t.stopped = true
	}
}

// DeltaT returns the elapsed time in seconds.
func (t *Timer) DeltaT() float64 {
	end := t.toc
	if !t.stopped {
		end = time.Now()
	}
	return end.Sub(t.tic).Seconds()
}
