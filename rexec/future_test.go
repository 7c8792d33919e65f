package rexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureComplete(t *testing.T) {
	future := NewFuture()

	require.True(t, future.Complete(42, nil))
	require.False(t, future.Complete(43, nil))

	value, err := future.Result(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestFutureCompleteWithError(t *testing.T) {
	future := NewFuture()

	require.True(t, future.Complete(nil, assert.AnError))
	require.ErrorIs(t, future.Wait(context.Background()), assert.AnError)

	_, err := future.Result(context.Background())
	require.ErrorIs(t, err, assert.AnError)
}

func TestFutureCancel(t *testing.T) {
	future := NewFuture()

	require.False(t, future.Cancelled())
	require.True(t, future.Cancel())
	require.False(t, future.Cancel())
	require.True(t, future.Cancelled())

	require.ErrorIs(t, future.Wait(context.Background()), ErrFutureCancelled)
}

func TestFutureCancelAfterCompletionIsIgnored(t *testing.T) {
	future := NewFuture()

	require.True(t, future.Complete(nil, nil))
	require.False(t, future.Cancel())
	require.False(t, future.Cancelled())
	require.NoError(t, future.Wait(context.Background()))
}

func TestFutureCompleteAfterCancellationIsIgnored(t *testing.T) {
	future := NewFuture()

	require.True(t, future.Cancel())
	require.False(t, future.Complete(42, nil))

	_, err := future.Result(context.Background())
	require.ErrorIs(t, err, ErrFutureCancelled)
}

func TestFutureWaitInterruptedByContext(t *testing.T) {
	future := NewFuture()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, future.Wait(ctx), context.DeadlineExceeded)
}

func TestFutureDone(t *testing.T) {
	future := NewFuture()

	select {
	case <-future.Done():
		t.Fatal("future resolved prematurely")
	default:
	}

	future.Complete(nil, nil)

	select {
	case <-future.Done():
	default:
		t.Fatal("future not resolved")
	}
}
