// Package pool exposes a worker pool implementing the 'rexec.ExecutorService' submission surface. Each worker
// goroutine owns a private ambient slot, which is what allows context-pinning decorators to install/restore retry
// contexts on it without any synchronization.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/retrykit/retry-tools/log"
	"github.com/retrykit/retry-tools/rctx"
	"github.com/retrykit/retry-tools/rexec"
)

// ErrShutDown is returned when submitting to a pool which has been shut down.
var ErrShutDown = errors.New("pool has been shut down")

// submission pairs a queued task with its result handle; fire-and-forget submissions carry no handle.
type submission struct {
	task   rexec.Task
	future *rexec.Future
	result any
}

// Pool is a fixed size worker pool which executes submitted tasks concurrently.
type Pool struct {
	opts Options

	queue   chan *submission
	quiesce chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	wg         sync.WaitGroup
	terminated chan struct{}

	lock     sync.RWMutex
	shutdown bool
	once     sync.Once
}

var _ rexec.ExecutorService = (*Pool)(nil)

// NewPool returns a new worker pool with the provided number of workers, ready to accept submissions.
func NewPool(opts Options) *Pool {
	// Fill out any missing fields with the sane defaults
	opts.defaults()

	ctx, cancel := context.WithCancel(opts.Context)

	pool := &Pool{
		opts:       opts,
		queue:      make(chan *submission, opts.QueueSize),
		quiesce:    make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		terminated: make(chan struct{}),
	}

	pool.wg.Add(opts.Size)

	for w := 0; w < opts.Size; w++ {
		go pool.work()
	}

	go func() { pool.wg.Wait(); close(pool.terminated) }()

	return pool
}

// work processes submissions until the pool is shut down; after a graceful shutdown the queue is drained before the
// worker exits.
func (p *Pool) work() {
	defer p.wg.Done()

	// The worker's private ambient slot; no other goroutine ever sees this context chain.
	ctx := rctx.WithSlot(p.ctx)

	for {
		select {
		case sub := <-p.queue:
			p.run(ctx, sub)
		case <-p.quiesce:
			p.drain(ctx)
			return
		case <-p.ctx.Done():
			return
		}
	}
}

// drain runs any submissions which were queued before shutdown was requested; 'enqueue' guarantees nothing new lands
// in the queue once the quiesce channel is closed.
func (p *Pool) drain(ctx context.Context) {
	for {
		select {
		case sub := <-p.queue:
			p.run(ctx, sub)
		default:
			return
		}
	}
}

// run executes a single submission on the worker's slot-carrying context and resolves its result handle, if any.
func (p *Pool) run(ctx context.Context, sub *submission) {
	if sub.future != nil && sub.future.Cancelled() {
		return
	}

	err := p.invoke(ctx, sub.task)

	if sub.future != nil {
		if err != nil {
			sub.future.Complete(nil, err)
		} else {
			sub.future.Complete(sub.result, nil)
		}

		return
	}

	// Fire-and-forget failures have no handle to carry them, log so they're not missed whilst debugging.
	if err != nil {
		log.Errorf("%s Failed to execute %s: %v", p.opts.LogPrefix, sub.task, err)
	}
}

// invoke runs the task, converting a panic into an error so that a misbehaving task cannot take the worker down.
func (p *Pool) invoke(ctx context.Context, task rexec.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task, r)
		}
	}()

	return task.Run(ctx)
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return p.opts.Size
}

// Execute queues the given task fire-and-forget style, returning an error if the pool has been shut down.
func (p *Pool) Execute(task rexec.Task) error {
	if task == nil {
		return rexec.ErrNilTask
	}

	return p.enqueue(&submission{task: task})
}

// Submit queues the given task, returning a future resolving to the task's error.
func (p *Pool) Submit(task rexec.Task) (*rexec.Future, error) {
	return p.SubmitWithResult(task, nil)
}

// SubmitWithResult queues the given task, returning a future which resolves to the given fixed value if the task
// succeeds.
func (p *Pool) SubmitWithResult(task rexec.Task, result any) (*rexec.Future, error) {
	if task == nil {
		return nil, rexec.ErrNilTask
	}

	future := rexec.NewFuture()

	if err := p.enqueue(&submission{task: task, future: future, result: result}); err != nil {
		return nil, err
	}

	return future, nil
}

// InvokeAll queues the given tasks then blocks until every one has completed, returning one future per task in input
// order. Cancellation of the given context interrupts the wait and is returned unchanged; already queued tasks still
// run.
func (p *Pool) InvokeAll(ctx context.Context, tasks []rexec.Task) ([]*rexec.Future, error) {
	futures := make([]*rexec.Future, 0, len(tasks))

	for _, task := range tasks {
		future, err := p.Submit(task)
		if err != nil {
			return nil, err
		}

		futures = append(futures, future)
	}

	for _, future := range futures {
		select {
		case <-future.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return futures, nil
}

// Shutdown stops intake of new submissions; queued tasks still run. Safe to call multiple times.
func (p *Pool) Shutdown() {
	p.lock.Lock()
	p.shutdown = true
	p.lock.Unlock()

	p.once.Do(func() { close(p.quiesce) })
}

// ShutdownNow stops intake and abandons queued submissions, returning the tasks which never started. Tasks already
// running observe cancellation via their context.
func (p *Pool) ShutdownNow() []rexec.Task {
	p.cancel()
	p.Shutdown()

	var abandoned []rexec.Task

	for {
		select {
		case sub := <-p.queue:
			if sub.future != nil {
				sub.future.Cancel()
			}

			abandoned = append(abandoned, sub.task)
		default:
			return abandoned
		}
	}
}

// IsShutdown returns a boolean indicating whether shutdown has been requested.
func (p *Pool) IsShutdown() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.shutdown
}

// IsTerminated returns a boolean indicating whether all workers have exited.
func (p *Pool) IsTerminated() bool {
	select {
	case <-p.terminated:
		return true
	default:
		return false
	}
}

// AwaitTermination blocks until the pool has terminated or the given context is cancelled.
func (p *Pool) AwaitTermination(ctx context.Context) error {
	select {
	case <-p.terminated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue hands the given submission to a worker, rejecting it if the pool has been shut down.
//
// NOTE: The read lock is held across the send; 'Shutdown' takes the write lock before closing the quiesce channel, so
// a submission can never land in the queue after the workers have begun their final drain.
func (p *Pool) enqueue(sub *submission) error {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if p.shutdown {
		return ErrShutDown
	}

	select {
	case p.queue <- sub:
		return nil
	case <-p.ctx.Done():
		return ErrShutDown
	}
}
