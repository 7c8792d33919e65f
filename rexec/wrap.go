package rexec

import (
	"context"

	"github.com/retrykit/retry-tools/rctx"
)

// contextTask decorates a delegate task with logic for installing a pinned retry context into the executing worker's
// ambient slot before invoking the delegate, and restoring the slot's previous value once the delegate has completed.
type contextTask struct {
	delegate Task
	install  rctx.Context

	// prior records the slot's value immediately before this task began running on the executing worker. It's
	// execution-scoped bookkeeping, populated on entry to 'Run' and cleared again on every exit path.
	prior rctx.Context
}

var _ Task = (*contextTask)(nil)

// Wrap returns a task which runs the given delegate with the given retry context installed as the executing worker's
// ambient context. A nil context pins emptiness: the worker's slot is cleared for the duration of the delegate.
//
// The context is fixed now, at wrap time; if the underlying scheduler invokes the returned task repeatedly, every
// firing installs this same context regardless of what is ambient anywhere by then.
func Wrap(delegate Task, c rctx.Context) (Task, error) {
	if delegate == nil {
		return nil, ErrNilTask
	}

	return &contextTask{delegate: delegate, install: c}, nil
}

// WrapAmbient returns a task which runs the given delegate under the retry context which is ambient on the calling
// goroutine right now. Changing the ambient context after this call has no effect on the returned task.
func WrapAmbient(ctx context.Context, delegate Task) (Task, error) {
	return Wrap(delegate, rctx.Current(ctx))
}

// Run installs the pinned context, invokes the delegate and unconditionally restores the slot to its previous value.
// The delegate's result, failure or panic passes through untouched; restoration is cleanup, never an error handler.
func (t *contextTask) Run(ctx context.Context) error {
	t.prior = rctx.Current(ctx)

	defer func() {
		rctx.Set(ctx, t.prior)
		t.prior = nil
	}()

	rctx.Set(ctx, t.install)

	return t.delegate.Run(ctx)
}

// String returns the delegate's display form.
func (t *contextTask) String() string {
	return t.delegate.String()
}
