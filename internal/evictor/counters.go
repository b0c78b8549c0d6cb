package evictor

import "sync/atomic"

type evictorCounters struct {
	scans       atomic.Int64
	purges      atomic.Int64
	flushes     atomic.Int64
	flushErrors atomic.Int64
}

func (c *evictorCounters) snapshot() (scans, purges, flushes, flushErrors int64) {
	return c.scans.Load(), c.purges.Load(), c.flushes.Load(), c.flushErrors.Load()
}

func newEvictorCounters() *evictorCounters {
	return &evictorCounters{}
}
