// Package rexec exposes the task submission surfaces used to dispatch work onto a pool/scheduler, along with
// decorators which pin a retry context to every submitted task; the pinned context becomes ambient on whichever
// worker goroutine ends up executing the task, for exactly the duration of the task.
package rexec

import (
	"context"
	"fmt"
)

// Task is a single unit of work. Implementations should honor cancellation of the given context where possible and
// return as quickly/cleanly as possible.
//
// NOTE: The display form returned by 'String' is used for diagnostics, decorators in this package preserve it so that
// wrapping never obscures what task is actually running.
type Task interface {
	// Run executes the unit of work. The given context is supplied by the executing pool and carries the worker's
	// ambient slot.
	Run(ctx context.Context) error

	fmt.Stringer
}

// funcTask adapts a plain function into a 'Task' with a fixed display form.
type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

var _ Task = (*funcTask)(nil)

// TaskFunc returns a task with the given display form which executes the given function.
func TaskFunc(name string, fn func(ctx context.Context) error) Task {
	return &funcTask{name: name, fn: fn}
}

func (t *funcTask) Run(ctx context.Context) error {
	return t.fn(ctx)
}

func (t *funcTask) String() string {
	return t.name
}
