package sched

import (
	"context"
	"sync/atomic"

	"github.com/retrykit/retry-tools/rexec"
)

// schedule is the handle to a recurring submission, implementing 'rexec.Periodic'.
type schedule struct {
	cancel  context.CancelFunc
	done    chan struct{}
	firings atomic.Int64
}

var _ rexec.Periodic = (*schedule)(nil)

func newSchedule(parent context.Context) (*schedule, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &schedule{cancel: cancel, done: make(chan struct{})}, ctx
}

// Cancel stops future firings; a firing already in flight runs to completion.
func (s *schedule) Cancel() {
	s.cancel()
}

// Done returns a channel which is closed once the schedule has stopped firing.
func (s *schedule) Done() <-chan struct{} {
	return s.done
}

// Firings returns the number of times the task has been invoked so far.
func (s *schedule) Firings() int {
	return int(s.firings.Load())
}
