package pool

import (
	"context"
	"runtime"
)

// Options encapsulates the available options which can be used when creating a worker pool.
type Options struct {
	// Context is the parent context for the pool; cancelling it behaves like 'ShutdownNow'. Defaults to the
	// background context.
	Context context.Context

	// Size dictates the number of goroutines created to process incoming tasks. Defaults to the number of vCPUs.
	Size int

	// QueueSize dictates how many submissions may be buffered before submitting blocks. Defaults to 'Size'.
	QueueSize int

	// LogPrefix is the prefix used when logging failures of fire-and-forget tasks which have no result handle to
	// carry the error. Defaults to '(pool)'.
	LogPrefix string
}

func (o *Options) defaults() {
	if o.Context == nil {
		o.Context = context.Background()
	}

	if o.Size == 0 {
		o.Size = runtime.NumCPU()
	}

	if o.QueueSize == 0 {
		o.QueueSize = o.Size
	}

	if o.LogPrefix == "" {
		o.LogPrefix = "(pool)"
	}
}
