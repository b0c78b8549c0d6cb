package eviction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func entry(key string, size uint64, ts int64) Entry {
	return Entry{Key: key, Size: size, Timestamp: ts, CustomerID: "0", URL: "NA"}
}

func internals(t *testing.T, p Policy) (*table, []*queue) {
	t.Helper()
	switch v := p.(type) {
	case *LRU:
		return &v.table, []*queue{&v.q}
	case *FIFO:
		return &v.table, []*queue{&v.q}
	case *SizeLRU:
		return &v.table, []*queue{&v.q}
	case *CostLRU:
		return &v.table, []*queue{&v.q}
	case *S4LRU:
		qs := make([]*queue, len(v.queues))
		for i := range v.queues {
			qs[i] = &v.queues[i]
		}
		return &v.table, qs
	}
	t.Fatalf("unexpected policy %T", p)
	return nil, nil
}

// requireConsistent checks that the index and the queues describe the same
// entries and that every size counter equals the sum of its entries.
func requireConsistent(t *testing.T, p Policy) {
	t.Helper()
	tbl, qs := internals(t, p)
	_, segmented := p.(*S4LRU)

	var total uint64
	seen := 0
	for qi, q := range qs {
		var size uint64
		n := 0
		prev := q.head
		for h, ok := tbl.front(q); ok; h, ok = tbl.older(q, h) {
			s := tbl.at(h)
			require.True(t, s.linked)
			require.Equal(t, prev, s.prev)
			require.Equal(t, h, tbl.index[s.Key])
			if segmented {
				require.Equal(t, qi, s.Queue)
			}
			size += s.Size
			n++
			prev = h
		}
		require.Equal(t, q.size, size)
		require.Equal(t, q.len, n)
		total += size
		seen += n
	}
	require.Equal(t, len(tbl.index), seen)
	require.Equal(t, total, p.Size())
}

// keysOldestFirst lists the keys of a single-queue policy from tail to head.
func keysOldestFirst(t *testing.T, p Policy) []string {
	t.Helper()
	tbl, qs := internals(t, p)
	var keys []string
	for h, ok := tbl.back(qs[0]); ok; h, ok = tbl.newer(qs[0], h) {
		keys = append(keys, tbl.at(h).Key)
	}
	return keys
}

type recordingSink struct {
	values map[string]float64
}

func newRecordingSink() *recordingSink {
	return &recordingSink{values: make(map[string]float64)}
}

func (r *recordingSink) Emit(layer, metric string, value float64) {
	r.values[layer+"."+metric] = value
}

func (r *recordingSink) Flush(int64) error { return nil }
