package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrykit/retry-tools/rctx"
	"github.com/retrykit/retry-tools/rexec"
)

func task(name string, fn func(ctx context.Context) error) rexec.Task {
	return rexec.TaskFunc(name, fn)
}

func TestNewPool(t *testing.T) {
	pool := NewPool(Options{Size: 1})

	require.Equal(t, 1, pool.Size())
	require.False(t, pool.IsShutdown())
	require.False(t, pool.IsTerminated())

	pool.Shutdown()
	require.NoError(t, pool.AwaitTermination(context.Background()))
}

func TestPoolExecute(t *testing.T) {
	var (
		executed = make(chan struct{})
		pool     = NewPool(Options{Size: 1})
	)

	require.NoError(t, pool.Execute(task("mark", func(ctx context.Context) error {
		close(executed)
		return nil
	})))

	<-executed

	pool.Shutdown()
	require.NoError(t, pool.AwaitTermination(context.Background()))
}

func TestPoolExecuteNilTask(t *testing.T) {
	pool := NewPool(Options{Size: 1})
	defer pool.Shutdown()

	require.ErrorIs(t, pool.Execute(nil), rexec.ErrNilTask)
}

func TestPoolSubmit(t *testing.T) {
	pool := NewPool(Options{Size: 1})
	defer pool.Shutdown()

	future, err := pool.Submit(task("noop", func(ctx context.Context) error { return nil }))
	require.NoError(t, err)
	require.NoError(t, future.Wait(context.Background()))
}

func TestPoolSubmitFailureSurfacesOnFuture(t *testing.T) {
	pool := NewPool(Options{Size: 1})
	defer pool.Shutdown()

	future, err := pool.Submit(task("fail", func(ctx context.Context) error { return assert.AnError }))
	require.NoError(t, err)
	require.ErrorIs(t, future.Wait(context.Background()), assert.AnError)
}

func TestPoolSubmitPanicSurfacesOnFuture(t *testing.T) {
	pool := NewPool(Options{Size: 1})
	defer pool.Shutdown()

	future, err := pool.Submit(task("panic", func(ctx context.Context) error { panic("boom") }))
	require.NoError(t, err)
	require.ErrorContains(t, future.Wait(context.Background()), "panicked")
}

func TestPoolSubmitWithResult(t *testing.T) {
	pool := NewPool(Options{Size: 1})
	defer pool.Shutdown()

	future, err := pool.SubmitWithResult(task("noop", func(ctx context.Context) error { return nil }), 42)
	require.NoError(t, err)

	value, err := future.Result(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestPoolInvokeAll(t *testing.T) {
	var (
		executed uint64
		pool     = NewPool(Options{Size: 4})
		tasks    []rexec.Task
	)

	defer pool.Shutdown()

	for i := 0; i < 42; i++ {
		tasks = append(tasks, task("count", func(ctx context.Context) error {
			atomic.AddUint64(&executed, 1)
			return nil
		}))
	}

	futures, err := pool.InvokeAll(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, futures, 42)
	require.Equal(t, uint64(42), atomic.LoadUint64(&executed))
}

func TestPoolInvokeAllInterruptedByContext(t *testing.T) {
	var (
		release = make(chan struct{})
		pool    = NewPool(Options{Size: 1})
	)

	defer close(release)
	defer pool.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := pool.InvokeAll(ctx, []rexec.Task{task("block", func(ctx context.Context) error {
		<-release
		return nil
	})})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPoolShutdownDrainsQueuedTasks(t *testing.T) {
	var (
		executed uint64
		pool     = NewPool(Options{Size: 1, QueueSize: 64})
	)

	for i := 0; i < 32; i++ {
		require.NoError(t, pool.Execute(task("count", func(ctx context.Context) error {
			atomic.AddUint64(&executed, 1)
			return nil
		})))
	}

	pool.Shutdown()
	require.NoError(t, pool.AwaitTermination(context.Background()))
	require.Equal(t, uint64(32), atomic.LoadUint64(&executed))
}

func TestPoolSubmitAfterShutdown(t *testing.T) {
	pool := NewPool(Options{Size: 1})

	pool.Shutdown()
	require.NoError(t, pool.AwaitTermination(context.Background()))

	require.ErrorIs(t, pool.Execute(task("noop", func(ctx context.Context) error { return nil })), ErrShutDown)

	_, err := pool.Submit(task("noop", func(ctx context.Context) error { return nil }))
	require.ErrorIs(t, err, ErrShutDown)
}

func TestPoolShutdownIsIdempotent(t *testing.T) {
	pool := NewPool(Options{Size: 1})

	pool.Shutdown()
	pool.Shutdown()

	require.NoError(t, pool.AwaitTermination(context.Background()))
	require.True(t, pool.IsTerminated())
}

func TestPoolShutdownNowAbandonsQueuedTasks(t *testing.T) {
	var (
		release = make(chan struct{})
		started = make(chan struct{})
		pool    = NewPool(Options{Size: 1, QueueSize: 64})
	)

	require.NoError(t, pool.Execute(task("block", func(ctx context.Context) error {
		close(started)
		<-release

		return nil
	})))

	<-started

	// The worker is occupied, these submissions stay queued
	futures := make([]*rexec.Future, 0, 8)

	for i := 0; i < 8; i++ {
		future, err := pool.Submit(task("queued", func(ctx context.Context) error { return nil }))
		require.NoError(t, err)

		futures = append(futures, future)
	}

	abandoned := pool.ShutdownNow()
	close(release)

	require.NoError(t, pool.AwaitTermination(context.Background()))

	// The queued tasks which never started must be handed back, their futures cancelled
	require.NotEmpty(t, abandoned)

	var cancelled int

	for _, future := range futures {
		if future.Cancelled() {
			cancelled++
		}
	}

	require.Equal(t, len(abandoned), cancelled)
}

func TestPoolAwaitTerminationInterruptedByContext(t *testing.T) {
	pool := NewPool(Options{Size: 1})
	defer pool.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, pool.AwaitTermination(ctx), context.DeadlineExceeded)
}

func TestPoolWorkersCarryAmbientSlot(t *testing.T) {
	pool := NewPool(Options{Size: 1})
	defer pool.Shutdown()

	future, err := pool.Submit(task("check", func(ctx context.Context) error {
		require.True(t, rctx.HasSlot(ctx))
		return nil
	}))
	require.NoError(t, err)
	require.NoError(t, future.Wait(context.Background()))
}

// TestPoolContextPropagationScenario drives the full flow on a two worker pool: a task wrapped with context C must
// observe C whilst running and leave the worker's slot empty afterwards; a second task wrapped with context D on the
// same pool must observe D, never C.
func TestPoolContextPropagationScenario(t *testing.T) {
	pool := NewPool(Options{Size: 2})
	defer pool.Shutdown()

	var (
		c = rctx.New()
		d = rctx.New()
	)

	run := func(install rctx.Context) {
		wrapped, err := rexec.Wrap(task("observe", func(ctx context.Context) error {
			require.Same(t, install, rctx.Current(ctx))
			return nil
		}), install)
		require.NoError(t, err)

		after, err := pool.Submit(wrapped)
		require.NoError(t, err)
		require.NoError(t, after.Wait(context.Background()))

		// Whichever worker ran the task must be back to an empty slot
		empty, err := pool.Submit(task("check empty", func(ctx context.Context) error {
			require.Nil(t, rctx.Current(ctx))
			return nil
		}))
		require.NoError(t, err)
		require.NoError(t, empty.Wait(context.Background()))
	}

	run(c)
	run(d)
}

// TestPoolConcurrentContextsDoNotInterfere runs two wrapped tasks with distinct contexts in parallel on two workers
// and asserts neither ever observes the other's context.
func TestPoolConcurrentContextsDoNotInterfere(t *testing.T) {
	pool := NewPool(Options{Size: 2})
	defer pool.Shutdown()

	var (
		c1, c2  = rctx.New(), rctx.New()
		barrier sync.WaitGroup
	)

	barrier.Add(2)

	submit := func(install rctx.Context) *rexec.Future {
		wrapped, err := rexec.Wrap(task("observe", func(ctx context.Context) error {
			// Hold both tasks in flight at the same time
			barrier.Done()
			barrier.Wait()

			for i := 0; i < 100; i++ {
				require.Same(t, install, rctx.Current(ctx))
			}

			return nil
		}), install)
		require.NoError(t, err)

		future, err := pool.Submit(wrapped)
		require.NoError(t, err)

		return future
	}

	f1, f2 := submit(c1), submit(c2)

	require.NoError(t, f1.Wait(context.Background()))
	require.NoError(t, f2.Wait(context.Background()))
}
