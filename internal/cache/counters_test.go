package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCounters_Snapshot verifies that counters correctly track and snapshot metrics.
func TestCounters_Snapshot(t *testing.T) {
	c := newCounters()
	require.Equal(t, Stats{}, c.snapshot())

	c.hits.Add(10)
	c.misses.Add(5)
	c.byteHits.Add(1024)
	c.originReads.Add(7)

	st := c.snapshot()
	require.Equal(t, uint64(10), st.Hits)
	require.Equal(t, uint64(5), st.Misses)
	require.Equal(t, uint64(1024), st.ByteHits)
	require.Equal(t, uint64(7), st.OriginReads)
	require.Zero(t, st.DiskReads)
}

// TestCounters_Concurrent verifies that snapshots may be taken while the replay writes.
func TestCounters_Concurrent(t *testing.T) {
	c := newCounters()

	const numGoroutines = 10
	const opsPerGoroutine = 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Go(func() {
			for j := 0; j < opsPerGoroutine; j++ {
				c.hits.Add(1)
				c.byteHits.Add(512)
				_ = c.snapshot()
			}
		})
	}
	wg.Wait()

	st := c.snapshot()
	require.Equal(t, uint64(numGoroutines*opsPerGoroutine), st.Hits)
	require.Equal(t, uint64(numGoroutines*opsPerGoroutine*512), st.ByteHits)
}
