package perf

import (
	"context"
	"sync"

	"github.com/inferkit/smc-go/pkg/logging"
)

// ProgressReporter receives completed-trial counts during a multi-trial run.
// Reporting is best effort: errors are logged and never abort inference.
type ProgressReporter interface {
	Update(progress int) error
	Delete() error
}

// progressNotifier pushes a monotonically increasing progress counter to a
// reporter from a single background goroutine. The goroutine sleeps on a
// condition variable rather than polling, and shutdown is signal-then-join
// and idempotent so teardown never blocks.
type progressNotifier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	reporter ProgressReporter
	logger   *logging.Logger

	progress int
	dirty    bool
	done     bool
	stopped  bool
	wg       sync.WaitGroup
}

func newProgressNotifier(reporter ProgressReporter, logger *logging.Logger) *progressNotifier {
	n := &progressNotifier{
		reporter: reporter,
		logger:   logger,
	}
	n.cond = sync.NewCond(&n.mu)
	return n
}

// Start launches the notifier goroutine.
func (n *progressNotifier) Start(ctx context.Context) {
	n.wg.Add(1)
	go n.loop(ctx)
}

func (n *progressNotifier) loop(ctx context.Context) {
	defer n.wg.Done()
	for {
		n.mu.Lock()
		for !n.dirty && !n.done {
			n.cond.Wait()
		}
		if n.done && !n.dirty {
			n.mu.Unlock()
			return
		}
		progress := n.progress
		n.dirty = false
		n.mu.Unlock()

		if err := n.reporter.Update(progress); err != nil {
			n.logger.Warn(ctx, "progress update failed: %v", err)
		}
	}
}

// Set records new progress and wakes the notifier.
func (n *progressNotifier) Set(progress int) {
	n.mu.Lock()
	n.progress = progress
	n.dirty = true
	n.cond.Signal()
	n.mu.Unlock()
}

// Stop signals the notifier, joins it, and releases the reporter. Safe to
// call more than once.
func (n *progressNotifier) Stop(ctx context.Context) {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	n.done = true
	n.cond.Signal()
	n.mu.Unlock()

	n.wg.Wait()

	if err := n.reporter.Delete(); err != nil {
		n.logger.Warn(ctx, "progress reporter cleanup failed: %v", err)
	}
}
