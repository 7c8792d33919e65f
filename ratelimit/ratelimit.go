// Package ratelimit exposes a rate limited submission decorator, composable with the context-pinning decorators; the
// usual layering is context decorator outermost so that wrap-time binding happens before any throttling delay.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/retrykit/retry-tools/rexec"
)

// RateLimitedExecutor will use its limiter as a rate limit on the number of tasks forwarded to the underlying
// executor; the wait happens on the submitting goroutine, the underlying executor's threading is untouched.
type RateLimitedExecutor struct {
	ctx      context.Context
	delegate rexec.Executor
	limiter  *rate.Limiter
}

var _ rexec.Executor = (*RateLimitedExecutor)(nil)

// NewRateLimitedExecutor returns a new executor which respects "limiter" in terms of the number of tasks submitted.
func NewRateLimitedExecutor(ctx context.Context, delegate rexec.Executor, limiter *rate.Limiter) (
	*RateLimitedExecutor, error,
) {
	if delegate == nil {
		return nil, rexec.ErrNilDelegate
	}

	return &RateLimitedExecutor{ctx: ctx, delegate: delegate, limiter: limiter}, nil
}

// Execute waits for a token then forwards the given task, unmodified, to the underlying executor. A cancelled wait
// surfaces to the submitter as a rejection.
func (e *RateLimitedExecutor) Execute(task rexec.Task) error {
	if err := e.limiter.Wait(e.ctx); err != nil {
		return fmt.Errorf("could not wait for limiter: %w", err)
	}

	return e.delegate.Execute(task)
}
