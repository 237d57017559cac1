package diagram

import (
	"context"
	"sync"
)

type mutation struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// mutationQueue runs submitted mutations one at a time, in submission order,
// on a single consumer goroutine.
type mutationQueue struct {
	jobs      chan mutation
	done      chan struct{}
	closeOnce sync.Once
}

func newMutationQueue() *mutationQueue {
	q := &mutationQueue{
		jobs: make(chan mutation),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *mutationQueue) run() {
	for {
		select {
		case m := <-q.jobs:
			m.result <- m.fn(m.ctx)
		case <-q.done:
			return
		}
	}
}

// do blocks until fn has run. A mutation that has started always runs to
// completion; ctx only bounds the wait for a free slot. An already cancelled
// ctx never runs fn.
func (q *mutationQueue) do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	m := mutation{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case q.jobs <- m:
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	}
	return <-m.result
}

func (q *mutationQueue) close() {
	q.closeOnce.Do(func() { close(q.done) })
}
