package evictor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNoOpEvictor_Metrics verifies the no-op ignores time and reports zeros.
func TestNoOpEvictor_Metrics(t *testing.T) {
	var ev NoOpEvictor
	ev.Observe(0)
	ev.Observe(1 << 40)

	scans, purges, flushes, flushErrors := ev.Metrics()
	require.Zero(t, scans)
	require.Zero(t, purges)
	require.Zero(t, flushes)
	require.Zero(t, flushErrors)
}
