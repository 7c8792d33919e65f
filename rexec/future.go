package rexec

import (
	"context"
	"sync"
)

// Future is the native result handle returned by the submission surfaces in this module. It is created/completed by
// the underlying pool, decorators return it to the submitter untouched.
type Future struct {
	lock      sync.Mutex
	done      chan struct{}
	value     any
	err       error
	cancelled bool
}

// NewFuture returns a new, incomplete future. Expected to be used by pool implementations only.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Complete resolves the future with the given value/error pair, returning a boolean indicating whether this call
// resolved it; completion after cancellation is ignored.
func (f *Future) Complete(value any, err error) bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.isDone() {
		return false
	}

	f.value = value
	f.err = err

	close(f.done)

	return true
}

// Cancel marks the future cancelled, returning a boolean indicating whether this call cancelled it. Cancellation only
// succeeds before the future is resolved; a task which already ran to completion is unaffected.
func (f *Future) Cancel() bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.isDone() {
		return false
	}

	f.cancelled = true
	f.err = ErrFutureCancelled

	close(f.done)

	return true
}

// Cancelled returns a boolean indicating whether the future was cancelled before its task ran.
func (f *Future) Cancelled() bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.cancelled
}

// Done returns a channel which is closed once the future is resolved or cancelled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves, returning the task's error. Waiting is interrupted, unchanged, by
// cancellation of the given context.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	return f.err
}

// Result blocks until the future resolves, returning the task's value/error pair.
func (f *Future) Result(ctx context.Context) (any, error) {
	if err := f.Wait(ctx); err != nil {
		return nil, err
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	return f.value, nil
}

// isDone must be called with the lock held.
func (f *Future) isDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
