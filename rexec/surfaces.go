package rexec

import (
	"context"
	"time"
)

// Executor is a single task, fire-and-forget submission surface. The returned error reports rejection only (e.g. the
// pool is shutting down), never the outcome of the task itself.
type Executor interface {
	Execute(task Task) error
}

// ExecutorService is a pool-level submission surface adding result-bearing submission, bulk submission and lifecycle
// management on top of 'Executor'.
type ExecutorService interface {
	Executor

	// Submit queues the given task, returning a future resolving to the task's error.
	Submit(task Task) (*Future, error)

	// SubmitWithResult queues the given task, returning a future which resolves to the given fixed value if the task
	// succeeds.
	SubmitWithResult(task Task, result any) (*Future, error)

	// InvokeAll queues the given tasks, returning one future per task, in input order. Blocking, if any, is dictated
	// by the implementation; cancellation of the given context interrupts the wait and propagates unchanged.
	InvokeAll(ctx context.Context, tasks []Task) ([]*Future, error)

	// Shutdown stops intake of new tasks; previously queued tasks still run.
	Shutdown()

	// ShutdownNow stops intake and abandons queued tasks, returning the tasks which never started.
	ShutdownNow() []Task

	// IsShutdown returns a boolean indicating whether shutdown has been requested.
	IsShutdown() bool

	// IsTerminated returns a boolean indicating whether shutdown has completed and all workers have exited.
	IsTerminated() bool

	// AwaitTermination blocks until the pool has terminated or the given context is cancelled.
	AwaitTermination(ctx context.Context) error
}

// Periodic is the handle to a recurring submission.
type Periodic interface {
	// Cancel stops future firings; a firing already in flight runs to completion.
	Cancel()

	// Done returns a channel which is closed once the schedule has stopped firing.
	Done() <-chan struct{}

	// Firings returns the number of times the task has been invoked so far.
	Firings() int
}

// ScheduledExecutorService is a scheduler-level submission surface adding delayed and periodic submission on top of
// 'ExecutorService'.
type ScheduledExecutorService interface {
	ExecutorService

	// Schedule queues the given task to run once after the given delay.
	Schedule(task Task, delay time.Duration) (*Future, error)

	// ScheduleAtFixedRate runs the given task repeatedly, attempting to start successive firings 'period' apart.
	// Firings never overlap; a slow task delays subsequent firings.
	ScheduleAtFixedRate(task Task, initialDelay, period time.Duration) (Periodic, error)

	// ScheduleWithFixedDelay runs the given task repeatedly, waiting 'delay' between the end of one firing and the
	// start of the next.
	ScheduleWithFixedDelay(task Task, initialDelay, delay time.Duration) (Periodic, error)

	// ScheduleCron runs the given task on a standard five-field cron expression.
	ScheduleCron(spec string, task Task) (Periodic, error)
}
