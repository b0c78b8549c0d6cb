package eviction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func queueOf(t *testing.T, p *S4LRU, key string) int {
	t.Helper()
	h, ok := p.index[key]
	require.True(t, ok, key)
	return p.at(h).Queue
}

// TestS4LRU_PromotionProtectsHitEntries verifies a hit entry outlives a newer cold one.
func TestS4LRU_PromotionProtectsHitEntries(t *testing.T) {
	p := NewS4LRU(2, 2)
	require.Equal(t, uint64(1), p.SegmentCapacity())

	p.Put(entry("X", 1, 0))
	_, ok := p.Get("X", 1)
	require.True(t, ok)
	p.Put(entry("Y", 1, 2))

	require.True(t, p.Check("X"))
	require.True(t, p.Check("Y"))
	require.Equal(t, 1, queueOf(t, p, "X"))
	require.Equal(t, 0, queueOf(t, p, "Y"))
	requireConsistent(t, p)

	// a new cold entry evicts the cold tail, never the promoted one
	p.Put(entry("Z", 1, 3))
	require.False(t, p.Check("Y"))
	require.True(t, p.Check("X"))
	require.True(t, p.Check("Z"))
	requireConsistent(t, p)
}

// TestS4LRU_OverflowDemotes verifies over-budget segments push their tail one segment down.
func TestS4LRU_OverflowDemotes(t *testing.T) {
	p := NewS4LRU(2, 2)
	p.Put(entry("X", 1, 0))
	_, _ = p.Get("X", 1)
	p.Put(entry("Y", 1, 2))
	_, _ = p.Get("Y", 3)

	require.Equal(t, 1, queueOf(t, p, "Y"))
	require.Equal(t, 0, queueOf(t, p, "X"))
	require.Equal(t, uint64(2), p.Size())

	// the hottest segment is a ceiling
	_, _ = p.Get("Y", 4)
	require.Equal(t, 1, queueOf(t, p, "Y"))
	requireConsistent(t, p)
}

// TestS4LRU_CapacityInvariant verifies every segment stays within its share.
func TestS4LRU_CapacityInvariant(t *testing.T) {
	p := NewS4LRU(400, 4)
	for i := 0; i < 40; i++ {
		key := string(rune('a' + i%20))
		if _, ok := p.Get(key, int64(i)); !ok {
			p.Put(entry(key, uint64(10+i%7*9), int64(i)))
		}
		for j := range p.queues {
			require.LessOrEqual(t, p.queues[j].size, p.SegmentCapacity())
		}
		requireConsistent(t, p)
	}
	require.LessOrEqual(t, p.Size(), p.Capacity())
}

// TestS4LRU_PurgeAndRemove verifies the remaining operations.
func TestS4LRU_PurgeAndRemove(t *testing.T) {
	p := NewS4LRU(100, 0)
	require.Len(t, p.queues, 4)
	require.False(t, p.PurgeRegular())

	p.Put(entry("A", 10, 0))
	_, _ = p.Get("A", 1)
	require.True(t, p.PurgeRegular())
	p.HourlyPurge(10)
	require.True(t, p.Check("A"))

	size, ok := p.Remove("A")
	require.True(t, ok)
	require.Equal(t, uint64(10), size)
	require.Zero(t, p.Size())
	requireConsistent(t, p)

	sink := newRecordingSink()
	p.Report(0, "ram", sink)
	require.Contains(t, sink.values, "ram.q3_size")
	require.Equal(t, "s4lru", p.Name())
}
