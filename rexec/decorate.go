package rexec

import (
	"context"
	"time"

	"github.com/retrykit/retry-tools/rctx"
)

// Augment transforms a task immediately before it is handed to an underlying submission surface. The same augment is
// applied uniformly to every task-bearing operation of a decorated surface, whether single, bulk, delayed or
// periodic.
type Augment func(task Task) (Task, error)

// ContextAugment returns an augment which wraps every task with the given retry context, per 'Wrap'.
func ContextAugment(c rctx.Context) Augment {
	return func(task Task) (Task, error) {
		return Wrap(task, c)
	}
}

// DecoratedExecutor augments every task submitted via 'Execute' before forwarding it, otherwise unmodified, to the
// underlying executor. Threading, ordering and cancellation all remain the underlying executor's business.
type DecoratedExecutor struct {
	delegate Executor
	augment  Augment
}

var _ Executor = (*DecoratedExecutor)(nil)

// DecorateExecutor returns an executor which applies the given augment to every submitted task.
func DecorateExecutor(delegate Executor, augment Augment) (*DecoratedExecutor, error) {
	if delegate == nil {
		return nil, ErrNilDelegate
	}

	if augment == nil {
		return nil, ErrNilAugment
	}

	return &DecoratedExecutor{delegate: delegate, augment: augment}, nil
}

// NewContextExecutor returns an executor which runs every submitted task under the given retry context.
func NewContextExecutor(delegate Executor, c rctx.Context) (*DecoratedExecutor, error) {
	return DecorateExecutor(delegate, ContextAugment(c))
}

// NewAmbientContextExecutor returns an executor which runs every submitted task under the retry context which is
// ambient on the calling goroutine now, at construction time.
func NewAmbientContextExecutor(ctx context.Context, delegate Executor) (*DecoratedExecutor, error) {
	return NewContextExecutor(delegate, rctx.Current(ctx))
}

func (e *DecoratedExecutor) Execute(task Task) error {
	task, err := e.augment(task)
	if err != nil {
		return err
	}

	return e.delegate.Execute(task)
}

// DecoratedExecutorService augments every task submitted via the service-level operations before forwarding it to the
// underlying pool. Result handles are returned to the submitter untouched and lifecycle operations are pure
// pass-throughs.
type DecoratedExecutorService struct {
	DecoratedExecutor
	delegate ExecutorService
}

var _ ExecutorService = (*DecoratedExecutorService)(nil)

// DecorateExecutorService returns an executor service which applies the given augment to every submitted task.
func DecorateExecutorService(delegate ExecutorService, augment Augment) (*DecoratedExecutorService, error) {
	inner, err := DecorateExecutor(delegate, augment)
	if err != nil {
		return nil, err
	}

	return &DecoratedExecutorService{DecoratedExecutor: *inner, delegate: delegate}, nil
}

// NewContextExecutorService returns an executor service which runs every submitted task under the given retry
// context.
func NewContextExecutorService(delegate ExecutorService, c rctx.Context) (*DecoratedExecutorService, error) {
	return DecorateExecutorService(delegate, ContextAugment(c))
}

// NewAmbientContextExecutorService returns an executor service which runs every submitted task under the retry
// context ambient on the calling goroutine at construction time.
func NewAmbientContextExecutorService(ctx context.Context, delegate ExecutorService) (*DecoratedExecutorService,
	error,
) {
	return NewContextExecutorService(delegate, rctx.Current(ctx))
}

func (s *DecoratedExecutorService) Submit(task Task) (*Future, error) {
	task, err := s.augment(task)
	if err != nil {
		return nil, err
	}

	return s.delegate.Submit(task)
}

func (s *DecoratedExecutorService) SubmitWithResult(task Task, result any) (*Future, error) {
	task, err := s.augment(task)
	if err != nil {
		return nil, err
	}

	return s.delegate.SubmitWithResult(task, result)
}

// InvokeAll augments every element individually, preserving input order and length, then forwards the augmented
// collection downstream; any ordering guarantee on the result list is the underlying pool's, untouched by this layer.
// An empty or nil input passes through unaugmented.
func (s *DecoratedExecutorService) InvokeAll(ctx context.Context, tasks []Task) ([]*Future, error) {
	if len(tasks) == 0 {
		return s.delegate.InvokeAll(ctx, tasks)
	}

	augmented := make([]Task, 0, len(tasks))

	for _, task := range tasks {
		task, err := s.augment(task)
		if err != nil {
			return nil, err
		}

		augmented = append(augmented, task)
	}

	return s.delegate.InvokeAll(ctx, augmented)
}

func (s *DecoratedExecutorService) Shutdown() {
	s.delegate.Shutdown()
}

func (s *DecoratedExecutorService) ShutdownNow() []Task {
	return s.delegate.ShutdownNow()
}

func (s *DecoratedExecutorService) IsShutdown() bool {
	return s.delegate.IsShutdown()
}

func (s *DecoratedExecutorService) IsTerminated() bool {
	return s.delegate.IsTerminated()
}

func (s *DecoratedExecutorService) AwaitTermination(ctx context.Context) error {
	return s.delegate.AwaitTermination(ctx)
}

// DecoratedScheduler augments every task submitted via the scheduling operations before forwarding it to the
// underlying scheduler.
//
// NOTE: Each scheduling operation augments its task exactly once, at scheduling time. A periodic schedule therefore
// re-invokes the same augmented task on every firing: with 'ContextAugment' every firing installs the identical
// context pinned when the schedule call was made, the ambient context on firing goroutines is never consulted. This
// is a deliberate limitation of wrap-time binding.
type DecoratedScheduler struct {
	DecoratedExecutorService
	delegate ScheduledExecutorService
}

var _ ScheduledExecutorService = (*DecoratedScheduler)(nil)

// DecorateScheduler returns a scheduler which applies the given augment to every submitted task.
func DecorateScheduler(delegate ScheduledExecutorService, augment Augment) (*DecoratedScheduler, error) {
	inner, err := DecorateExecutorService(delegate, augment)
	if err != nil {
		return nil, err
	}

	return &DecoratedScheduler{DecoratedExecutorService: *inner, delegate: delegate}, nil
}

// NewContextScheduler returns a scheduler which runs every submitted task under the given retry context.
func NewContextScheduler(delegate ScheduledExecutorService, c rctx.Context) (*DecoratedScheduler, error) {
	return DecorateScheduler(delegate, ContextAugment(c))
}

// NewAmbientContextScheduler returns a scheduler which runs every submitted task under the retry context ambient on
// the calling goroutine at construction time.
func NewAmbientContextScheduler(ctx context.Context, delegate ScheduledExecutorService) (*DecoratedScheduler, error) {
	return NewContextScheduler(delegate, rctx.Current(ctx))
}

func (s *DecoratedScheduler) Schedule(task Task, delay time.Duration) (*Future, error) {
	task, err := s.augment(task)
	if err != nil {
		return nil, err
	}

	return s.delegate.Schedule(task, delay)
}

func (s *DecoratedScheduler) ScheduleAtFixedRate(task Task, initialDelay, period time.Duration) (Periodic, error) {
	task, err := s.augment(task)
	if err != nil {
		return nil, err
	}

	return s.delegate.ScheduleAtFixedRate(task, initialDelay, period)
}

func (s *DecoratedScheduler) ScheduleWithFixedDelay(task Task, initialDelay, delay time.Duration) (Periodic, error) {
	task, err := s.augment(task)
	if err != nil {
		return nil, err
	}

	return s.delegate.ScheduleWithFixedDelay(task, initialDelay, delay)
}

func (s *DecoratedScheduler) ScheduleCron(spec string, task Task) (Periodic, error) {
	task, err := s.augment(task)
	if err != nil {
		return nil, err
	}

	return s.delegate.ScheduleCron(spec, task)
}
