package cache

import "sync/atomic"

type counters struct {
	hits        atomic.Uint64
	misses      atomic.Uint64
	byteHits    atomic.Uint64
	byteMisses  atomic.Uint64
	originReads atomic.Uint64
	diskReads   atomic.Uint64
	diskWrites  atomic.Uint64
	admitted    atomic.Uint64
	refused     atomic.Uint64
}

func newCounters() *counters {
	return &counters{}
}

// Stats is a cumulative snapshot of a layer. Counters only grow.
type Stats struct {
	Hits        uint64
	Misses      uint64
	ByteHits    uint64
	ByteMisses  uint64
	OriginReads uint64
	// DiskReads and DiskWrites count 512-byte blocks.
	DiskReads   uint64
	DiskWrites  uint64
	Admitted    uint64
	Refused     uint64
	Purges      uint64
	PurgedBytes uint64

	// Size, Capacity and Entries are gauges.
	Size     uint64
	Capacity uint64
	Entries  int
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		ByteHits:    c.byteHits.Load(),
		ByteMisses:  c.byteMisses.Load(),
		OriginReads: c.originReads.Load(),
		DiskReads:   c.diskReads.Load(),
		DiskWrites:  c.diskWrites.Load(),
		Admitted:    c.admitted.Load(),
		Refused:     c.refused.Load(),
	}
}
