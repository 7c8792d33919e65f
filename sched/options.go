package sched

import "context"

// Options encapsulates the available options which can be used when creating a scheduler.
type Options struct {
	// Context is the parent context for the scheduler; cancelling it behaves like 'ShutdownNow'. Defaults to the
	// background context.
	Context context.Context

	// PoolSize dictates the number of workers backing immediate (non-timed) submissions. Defaults to the number of
	// vCPUs.
	PoolSize int

	// LogPrefix is the prefix used when logging failures of periodic firings, which have no result handle to carry
	// the error. Defaults to '(sched)'.
	LogPrefix string
}

func (o *Options) defaults() {
	if o.Context == nil {
		o.Context = context.Background()
	}

	if o.LogPrefix == "" {
		o.LogPrefix = "(sched)"
	}
}
