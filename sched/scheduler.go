// Package sched exposes a scheduler implementing the 'rexec.ScheduledExecutorService' submission surface: one-shot
// delayed submission, fixed-rate/fixed-delay periodic submission and cron expression schedules. Timed work runs on a
// per-schedule goroutine owning a private ambient slot, so context-pinning decorators compose with it the same way
// they compose with a plain pool.
package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/retrykit/retry-tools/log"
	"github.com/retrykit/retry-tools/pool"
	"github.com/retrykit/retry-tools/rctx"
	"github.com/retrykit/retry-tools/rexec"
)

// ErrInvalidInterval is returned when scheduling with a non-positive delay or period.
var ErrInvalidInterval = errors.New("interval must be positive")

// Scheduler runs delayed and periodic tasks, delegating immediate submissions to an internal worker pool.
type Scheduler struct {
	opts Options
	pool *pool.Pool

	ctx    context.Context
	cancel context.CancelFunc

	wg         sync.WaitGroup
	terminated chan struct{}

	lock     sync.RWMutex
	shutdown bool
	once     sync.Once
}

var _ rexec.ScheduledExecutorService = (*Scheduler)(nil)

// NewScheduler returns a new scheduler ready to accept submissions.
func NewScheduler(opts Options) *Scheduler {
	opts.defaults()

	ctx, cancel := context.WithCancel(opts.Context)

	// The pool hangs off the caller's context, not the scheduler's cancellable one; a graceful shutdown must only
	// stop the schedule goroutines whilst queued immediate tasks drain.
	return &Scheduler{
		opts:       opts,
		pool:       pool.NewPool(pool.Options{Context: opts.Context, Size: opts.PoolSize, LogPrefix: opts.LogPrefix}),
		ctx:        ctx,
		cancel:     cancel,
		terminated: make(chan struct{}),
	}
}

// Execute queues the given task for immediate execution, fire-and-forget style.
func (s *Scheduler) Execute(task rexec.Task) error {
	return s.pool.Execute(task)
}

// Submit queues the given task for immediate execution, returning a future resolving to the task's error.
func (s *Scheduler) Submit(task rexec.Task) (*rexec.Future, error) {
	return s.pool.Submit(task)
}

// SubmitWithResult queues the given task for immediate execution, returning a future which resolves to the given
// fixed value if the task succeeds.
func (s *Scheduler) SubmitWithResult(task rexec.Task, result any) (*rexec.Future, error) {
	return s.pool.SubmitWithResult(task, result)
}

// InvokeAll queues the given tasks for immediate execution and blocks until every one has completed.
func (s *Scheduler) InvokeAll(ctx context.Context, tasks []rexec.Task) ([]*rexec.Future, error) {
	return s.pool.InvokeAll(ctx, tasks)
}

// Schedule queues the given task to run once after the given delay, returning a future resolving to the task's
// error. Cancelling the future before the delay elapses prevents the task from ever running.
func (s *Scheduler) Schedule(task rexec.Task, delay time.Duration) (*rexec.Future, error) {
	if task == nil {
		return nil, rexec.ErrNilTask
	}

	if delay < 0 {
		return nil, ErrInvalidInterval
	}

	future := rexec.NewFuture()

	if err := s.spawn(func(ctx context.Context) {
		// The schedule goroutine's private ambient slot.
		ctx = rctx.WithSlot(ctx)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			future.Cancel()
			return
		}

		if future.Cancelled() {
			return
		}

		future.Complete(nil, s.invoke(ctx, task))
	}); err != nil {
		return nil, err
	}

	return future, nil
}

// ScheduleAtFixedRate runs the given task repeatedly, attempting to start successive firings 'period' apart. Firings
// never overlap; a slow task delays subsequent firings.
func (s *Scheduler) ScheduleAtFixedRate(task rexec.Task, initialDelay, period time.Duration) (rexec.Periodic, error) {
	if task == nil {
		return nil, rexec.ErrNilTask
	}

	if period <= 0 || initialDelay < 0 {
		return nil, ErrInvalidInterval
	}

	handle, ctx := newSchedule(s.ctx)

	if err := s.spawn(func(_ context.Context) {
		defer close(handle.done)

		// The schedule's private ambient slot, reused for every firing.
		ctx := rctx.WithSlot(ctx)

		if !sleep(ctx, initialDelay) {
			return
		}

		s.fire(ctx, handle, task)

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.fire(ctx, handle, task)
			case <-ctx.Done():
				return
			}
		}
	}); err != nil {
		return nil, err
	}

	return handle, nil
}

// ScheduleWithFixedDelay runs the given task repeatedly, waiting 'delay' between the end of one firing and the start
// of the next.
func (s *Scheduler) ScheduleWithFixedDelay(task rexec.Task, initialDelay, delay time.Duration) (rexec.Periodic,
	error,
) {
	if task == nil {
		return nil, rexec.ErrNilTask
	}

	if delay <= 0 || initialDelay < 0 {
		return nil, ErrInvalidInterval
	}

	handle, ctx := newSchedule(s.ctx)

	if err := s.spawn(func(_ context.Context) {
		defer close(handle.done)

		ctx := rctx.WithSlot(ctx)

		if !sleep(ctx, initialDelay) {
			return
		}

		for {
			s.fire(ctx, handle, task)

			if !sleep(ctx, delay) {
				return
			}
		}
	}); err != nil {
		return nil, err
	}

	return handle, nil
}

// ScheduleCron runs the given task on the given standard five-field cron expression.
func (s *Scheduler) ScheduleCron(spec string, task rexec.Task) (rexec.Periodic, error) {
	if task == nil {
		return nil, rexec.ErrNilTask
	}

	expr, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("could not parse cron expression: %w", err)
	}

	handle, ctx := newSchedule(s.ctx)

	if err := s.spawn(func(_ context.Context) {
		defer close(handle.done)

		ctx := rctx.WithSlot(ctx)

		for {
			if !sleep(ctx, time.Until(expr.Next(time.Now()))) {
				return
			}

			s.fire(ctx, handle, task)
		}
	}); err != nil {
		return nil, err
	}

	return handle, nil
}

// Shutdown stops intake of new submissions and cancels schedules which haven't fired; queued immediate tasks still
// run. Safe to call multiple times.
func (s *Scheduler) Shutdown() {
	s.lock.Lock()
	s.shutdown = true
	s.lock.Unlock()

	s.cancel()
	s.pool.Shutdown()

	s.once.Do(func() {
		go func() {
			s.wg.Wait()
			_ = s.pool.AwaitTermination(context.Background())
			close(s.terminated)
		}()
	})
}

// ShutdownNow stops intake, cancels schedules and abandons queued immediate submissions, returning the tasks which
// never started.
func (s *Scheduler) ShutdownNow() []rexec.Task {
	abandoned := s.pool.ShutdownNow()
	s.Shutdown()

	return abandoned
}

// IsShutdown returns a boolean indicating whether shutdown has been requested.
func (s *Scheduler) IsShutdown() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.shutdown
}

// IsTerminated returns a boolean indicating whether shutdown has completed, all schedules have stopped and all pool
// workers have exited.
func (s *Scheduler) IsTerminated() bool {
	select {
	case <-s.terminated:
		return true
	default:
		return false
	}
}

// AwaitTermination blocks until the scheduler has terminated or the given context is cancelled.
func (s *Scheduler) AwaitTermination(ctx context.Context) error {
	select {
	case <-s.terminated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// spawn starts a schedule goroutine, rejecting the submission if the scheduler has been shut down.
func (s *Scheduler) spawn(fn func(ctx context.Context)) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.shutdown {
		return pool.ErrShutDown
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()

	return nil
}

// fire runs one firing of a periodic schedule, logging the failure given that periodic submissions have no result
// handle to carry it.
func (s *Scheduler) fire(ctx context.Context, handle *schedule, task rexec.Task) {
	handle.firings.Add(1)

	if err := s.invoke(ctx, task); err != nil {
		log.Errorf("%s Failed to execute %s: %v", s.opts.LogPrefix, task, err)
	}
}

// invoke runs the task, converting a panic into an error so that a misbehaving task cannot take the schedule
// goroutine down.
func (s *Scheduler) invoke(ctx context.Context, task rexec.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task, r)
		}
	}()

	return task.Run(ctx)
}

// sleep waits for the given duration, returning false if the context was cancelled first.
func sleep(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
