package ashsim

import (
	"github.com/Borislavv/go-ash-sim/internal/cache"
	"github.com/Borislavv/go-ash-sim/internal/telemetry"
)

// Stats is a cumulative view of a run.
type Stats struct {
	Events    uint64
	Timestamp int64

	// HitRatio counts hits of every layer over requests seen by the head.
	HitRatio     float64
	ByteHitRatio float64
	OriginReads  uint64
	Ideal        telemetry.IdealStats

	PurgeCycles int64
	Purges      int64
	Flushes     int64
	FlushErrors int64

	Layers []LayerStats
}

type LayerStats struct {
	Name string
	cache.Stats
}

// ReplayStats summarizes one Replay call.
type ReplayStats struct {
	Events  uint64
	Skipped uint64
}

func ratio(n, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
