package telemetry

import (
	"github.com/Borislavv/go-ash-sim/internal/cache"
	"github.com/Borislavv/go-ash-sim/internal/evictor"
)

type sampler struct {
	chain   *cache.Chain
	evictor evictor.Evictor
	ideal   *Ideal
}

func newSampler(c *cache.Chain, e evictor.Evictor, ideal *Ideal) sampler {
	return sampler{chain: c, evictor: e, ideal: ideal}
}

// snapshot holds cumulative counters (monotonic) of the chain.
type snapshot struct {
	layers []cache.Stats
	ideal  IdealStats

	purgeScans  uint64
	purges      uint64
	flushes     uint64
	flushErrors uint64
}

func (s sampler) snapshot() snapshot {
	layers := make([]cache.Stats, 0, len(s.chain.Layers()))
	for _, l := range s.chain.Layers() {
		layers = append(layers, l.Stats())
	}
	scans, purges, flushes, flushErrors := s.evictor.Metrics()

	return snapshot{
		layers: layers,
		ideal:  s.ideal.Stats(),

		purgeScans:  uint64(max(scans, 0)),
		purges:      uint64(max(purges, 0)),
		flushes:     uint64(max(flushes, 0)),
		flushErrors: uint64(max(flushErrors, 0)),
	}
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
// Gauges (size, capacity, entries, ideal keys) are taken from cur.
func deltaSnapshot(prev, cur snapshot) snapshot {
	layers := make([]cache.Stats, len(cur.layers))
	for i, c := range cur.layers {
		var p cache.Stats
		if i < len(prev.layers) {
			p = prev.layers[i]
		}
		layers[i] = cache.Stats{
			Hits:        delta(p.Hits, c.Hits),
			Misses:      delta(p.Misses, c.Misses),
			ByteHits:    delta(p.ByteHits, c.ByteHits),
			ByteMisses:  delta(p.ByteMisses, c.ByteMisses),
			OriginReads: delta(p.OriginReads, c.OriginReads),
			DiskReads:   delta(p.DiskReads, c.DiskReads),
			DiskWrites:  delta(p.DiskWrites, c.DiskWrites),
			Admitted:    delta(p.Admitted, c.Admitted),
			Refused:     delta(p.Refused, c.Refused),
			Purges:      delta(p.Purges, c.Purges),
			PurgedBytes: delta(p.PurgedBytes, c.PurgedBytes),

			Size:     c.Size,
			Capacity: c.Capacity,
			Entries:  c.Entries,
		}
	}

	return snapshot{
		layers: layers,
		ideal: IdealStats{
			Hits:      delta(prev.ideal.Hits, cur.ideal.Hits),
			Misses:    delta(prev.ideal.Misses, cur.ideal.Misses),
			HitBytes:  delta(prev.ideal.HitBytes, cur.ideal.HitBytes),
			MissBytes: delta(prev.ideal.MissBytes, cur.ideal.MissBytes),
			Keys:      cur.ideal.Keys,
		},

		purgeScans:  delta(prev.purgeScans, cur.purgeScans),
		purges:      delta(prev.purges, cur.purges),
		flushes:     delta(prev.flushes, cur.flushes),
		flushErrors: delta(prev.flushErrors, cur.flushErrors),
	}
}

func delta(prev, cur uint64) uint64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}

func ratio(n, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
