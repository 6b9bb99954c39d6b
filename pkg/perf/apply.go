package perf

import (
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// TrialFunc runs one full trial and returns its performance table.
type TrialFunc func() (*Table, error)

// Handle is the deferred result of a dispatched trial.
type Handle interface {
	// Get blocks until the trial completes and returns its result. Repeated
	// calls return the same result.
	Get() (*Table, error)
}

// Apply is the task-submission abstraction the multi-trial harness dispatches
// through. Serial and Parallel satisfy the identical contract, so the trial
// loop never hardwires a concurrency model.
type Apply interface {
	Apply(fn TrialFunc) Handle
}

// Serial runs each trial in the calling goroutine, lazily on first Get.
type Serial struct{}

// NewSerial returns the synchronous dispatcher.
func NewSerial() *Serial {
	return &Serial{}
}

func (s *Serial) Apply(fn TrialFunc) Handle {
	return &serialHandle{fn: fn}
}

type serialHandle struct {
	fn    TrialFunc
	once  sync.Once
	table *Table
	err   error
}

func (h *serialHandle) Get() (*Table, error) {
	h.once.Do(func() {
		h.table, h.err = h.fn()
	})
	return h.table, h.err
}

// Parallel dispatches trials onto a bounded worker pool. Trials start as
// soon as a worker is free; Get blocks only on its own trial.
type Parallel struct {
	pool *pool.Pool
}

// NewParallel builds a parallel dispatcher. maxWorkers <= 0 means unbounded.
func NewParallel(maxWorkers int) *Parallel {
	p := pool.New()
	if maxWorkers > 0 {
		p = p.WithMaxGoroutines(maxWorkers)
	}
	return &Parallel{pool: p}
}

func (p *Parallel) Apply(fn TrialFunc) Handle {
	h := &parallelHandle{done: make(chan struct{})}
	p.pool.Go(func() {
		h.table, h.err = fn()
		close(h.done)
	})
	return h
}

// Wait blocks until every dispatched trial has finished. Call it when the
// dispatcher is no longer needed.
func (p *Parallel) Wait() {
	p.pool.Wait()
}

type parallelHandle struct {
	done  chan struct{}
	table *Table
	err   error
}

func (h *parallelHandle) Get() (*Table, error) {
	<-h.done
	return h.table, h.err
}
