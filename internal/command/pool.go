package command

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of remote calls in flight.
//
// Submissions beyond the worker count wait for a free slot. With maxPending
// set to 0 the wait queue is unbounded; otherwise Submit fails fast with
// ErrQueueFull once maxPending submissions are waiting.
//
// The pool is created once at startup and never resized or drained.
type Pool struct {
	sem        *semaphore.Weighted
	workers    int
	maxPending int64

	queued  atomic.Int64
	running atomic.Int64
}

// NewPool creates a pool with a fixed number of worker slots.
// workers below 1 is treated as 1.
func NewPool(workers, maxPending int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if maxPending < 0 {
		maxPending = 0
	}
	return &Pool{
		sem:        semaphore.NewWeighted(int64(workers)),
		workers:    workers,
		maxPending: int64(maxPending),
	}
}

// Submit schedules task to run once a worker slot is free.
//
// If ctx is done before a slot is acquired the task is dropped without
// running. Once started the task runs to completion regardless of ctx.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	if n := p.queued.Add(1); p.maxPending > 0 && n > p.maxPending {
		p.queued.Add(-1)
		return ErrQueueFull
	}

	go p.run(ctx, task)
	return nil
}

func (p *Pool) run(ctx context.Context, task func()) {
	err := p.sem.Acquire(ctx, 1)
	p.queued.Add(-1)
	if err != nil {
		return
	}

	// Acquire may succeed on an already-done context when a slot is free.
	if ctx.Err() != nil {
		p.sem.Release(1)
		return
	}

	p.running.Add(1)
	defer func() {
		p.running.Add(-1)
		p.sem.Release(1)
	}()

	task()
}

// Workers returns the fixed concurrency of the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// Running returns the number of tasks currently holding a slot.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// Queued returns the number of submitted tasks still waiting for a slot.
func (p *Pool) Queued() int {
	return int(p.queued.Load())
}
