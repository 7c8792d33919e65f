// Package retry exposes the policy layer which produces the retry contexts that get propagated across task hand-off
// boundaries: a retryer mints a context per retryable block, advances it per attempt and makes it ambient on the
// calling goroutine for the duration of each attempt.
package retry

import (
	"context"
	"time"

	"github.com/retrykit/retry-tools/rctx"
)

// RetryableFunc is the function being retried; the retry context for the current attempt is ambient via
// 'rctx.Current' for the duration of the call, and travels with any work the function hands off through a decorated
// submission surface.
type RetryableFunc func(ctx context.Context) (any, error)

// Retryer is a configurable function executor which will retry the provided function with backoff.
type Retryer struct {
	options RetryerOptions
}

// NewRetryer returns a new retryer with the given options, using sane defaults for any which are omitted.
func NewRetryer(options RetryerOptions) Retryer {
	options.defaults()
	return Retryer{options: options}
}

// Do executes the given function, retrying upon failure with backoff until the configured number of retries is
// exhausted.
//
// A fresh retry context becomes ambient on the calling goroutine before the first attempt; if another retryable block
// is already in flight on this goroutine, the new context is derived from it. The previous ambient value is restored
// once 'Do' returns, whatever the outcome.
func (r Retryer) Do(ctx context.Context, fn RetryableFunc) (any, error) {
	// Attach a slot when the caller hasn't set one up, the minted context must be reachable via 'rctx.Current'
	// inside the attempts.
	if !rctx.HasSlot(ctx) {
		ctx = rctx.WithSlot(ctx)
	}

	var (
		prior = rctx.Current(ctx)
		rc    rctx.Context
	)

	if prior != nil {
		rc = rctx.NewChild(prior)
	} else {
		rc = rctx.New()
	}

	defer rctx.Set(ctx, prior)
	rctx.Set(ctx, rc)

	return r.attempt(ctx, rc, fn)
}

func (r Retryer) attempt(ctx context.Context, rc rctx.Context, fn RetryableFunc) (any, error) {
	var (
		payload any
		err     error
	)

	for ; rc.Attempt() <= r.options.MaxRetries; rctx.Advance(rc) {
		payload, err = fn(ctx)
		if err == nil {
			return payload, nil
		}

		if r.options.ShouldRetry != nil && !r.options.ShouldRetry(rc, payload, err) {
			return payload, &RetriesAbortedError{attempts: rc.Attempt(), err: err}
		}

		if rc.Attempt() == r.options.MaxRetries {
			break
		}

		if r.options.Log != nil {
			r.options.Log(rc, payload, err)
		}

		if r.options.Cleanup != nil {
			r.options.Cleanup(payload)
		}

		if cancelErr := cancellableSleep(ctx, r.duration(rc.Attempt())); cancelErr != nil {
			return payload, &RetriesAbortedError{attempts: rc.Attempt(), err: cancelErr}
		}
	}

	return payload, &RetriesExhaustedError{attempts: r.options.MaxRetries, err: err}
}

// duration returns the backoff delay for the given attempt, clamped between the configured min/max delays.
func (r Retryer) duration(attempt int) time.Duration {
	var duration time.Duration

	switch r.options.Algorithm {
	case AlgorithmFibonacci:
		duration = time.Duration(fibN(attempt+1)) * r.options.MinDelay
	case AlgorithmExponential:
		duration = time.Duration(1<<(attempt-1)) * r.options.MinDelay
	case AlgorithmLinear:
		duration = time.Duration(attempt) * r.options.MinDelay
	}

	return max(min(duration, r.options.MaxDelay), r.options.MinDelay)
}

// cancellableSleep waits for the given duration, returning early with the causal error if the given context is
// cancelled.
func cancellableSleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
