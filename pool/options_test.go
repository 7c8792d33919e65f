package pool

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	options := Options{}
	options.defaults()

	require.Equal(t, context.Background(), options.Context)
	require.Equal(t, runtime.NumCPU(), options.Size)
	require.Equal(t, runtime.NumCPU(), options.QueueSize)
	require.Equal(t, "(pool)", options.LogPrefix)
}

func TestOptionsSuppliedValuesUntouched(t *testing.T) {
	options := Options{Size: 2, QueueSize: 8, LogPrefix: "(custom)"}
	options.defaults()

	require.Equal(t, 2, options.Size)
	require.Equal(t, 8, options.QueueSize)
	require.Equal(t, "(custom)", options.LogPrefix)
}
