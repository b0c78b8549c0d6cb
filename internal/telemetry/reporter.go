// Package telemetry produces periodic hit-ratio reports on trace time.
package telemetry

import (
	"log/slog"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/cache"
	"github.com/Borislavv/go-ash-sim/internal/evictor"
	"github.com/Borislavv/go-ash-sim/internal/report"
	"github.com/Borislavv/go-ash-sim/model"
)

// Reporter accumulates traffic and emits a report every interval seconds of
// trace time. Every report covers the events since the previous one.
type Reporter struct {
	interval int64
	logger   *slog.Logger
	chain    *cache.Chain
	ideal    *Ideal
	sink     report.Sink
	sampler  sampler
	prev     snapshot

	last    int64
	started bool
	reports uint64

	trafficBytes uint64
	requests     uint64
}

// New builds a reporter over chain. Without a reporting config there are no
// periodic reports, Report still works. With stat logs enabled a Logs sink
// is appended to sinks.
func New(
	cfg *config.Sim,
	logger *slog.Logger,
	chain *cache.Chain,
	ev evictor.Evictor,
	sinks ...report.Sink,
) *Reporter {
	var interval int64
	if cfg.Reporting.Enabled() {
		interval = cfg.Reporting.Interval
		if cfg.Reporting.IsLogsEnabled {
			sinks = append(sinks, NewLogs(logger))
		}
	}

	ideal := NewIdeal()
	r := &Reporter{
		interval: interval,
		logger:   logger,
		chain:    chain,
		ideal:    ideal,
		sink:     report.Multi(sinks),
		sampler:  newSampler(chain, ev, ideal),
	}
	r.prev = r.sampler.snapshot()
	return r
}

// Observe records a processed event and reports when the interval elapsed.
func (r *Reporter) Observe(ev *model.Event) {
	r.ideal.Observe(ev.CacheKey, ev.Size)
	r.trafficBytes += ev.BytesOut
	r.requests++

	if !r.started {
		r.last, r.started = ev.Timestamp, true
		return
	}
	if r.interval > 0 && ev.Timestamp-r.last > r.interval {
		r.last = ev.Timestamp
		r.Report(ev.Timestamp)
	}
}

// Report emits one report covering everything since the previous one.
func (r *Reporter) Report(ts int64) {
	cur := r.sampler.snapshot()
	d := deltaSnapshot(r.prev, cur)
	r.prev = cur
	r.reports++

	var hits, hitBytes uint64
	for _, l := range d.layers {
		hits += l.Hits
		hitBytes += l.ByteHits
	}
	head := d.layers[0]

	r.sink.Emit(report.Global, "hit_ratio", ratio(hits, head.Hits+head.Misses))
	r.sink.Emit(report.Global, "byte_hit_ratio", ratio(hitBytes, head.ByteHits+head.ByteMisses))
	r.sink.Emit(report.Global, "ideal_hit_ratio", ratio(d.ideal.Hits, d.ideal.Hits+d.ideal.Misses))
	r.sink.Emit(report.Global, "ideal_byte_hit_ratio", ratio(d.ideal.HitBytes, d.ideal.HitBytes+d.ideal.MissBytes))
	r.sink.Emit(report.Global, "requests", float64(r.requests))
	r.sink.Emit(report.Global, "traffic_bytes", float64(r.trafficBytes))
	r.sink.Emit(report.Global, "unique_keys", float64(d.ideal.Keys))
	r.sink.Emit(report.Global, "purge_cycles", float64(d.purgeScans))
	r.sink.Emit(report.Global, "flush_errors", float64(d.flushErrors))
	r.requests, r.trafficBytes = 0, 0

	for i, l := range r.chain.Layers() {
		s, name := d.layers[i], l.Name()
		r.sink.Emit(name, "hit_rate", ratio(s.Hits, s.Hits+s.Misses))
		r.sink.Emit(name, "byte_hit_rate", ratio(s.ByteHits, s.ByteHits+s.ByteMisses))
		r.sink.Emit(name, "hits", float64(s.Hits))
		r.sink.Emit(name, "misses", float64(s.Misses))
		r.sink.Emit(name, "byte_hits", float64(s.ByteHits))
		r.sink.Emit(name, "byte_misses", float64(s.ByteMisses))
		r.sink.Emit(name, "disk_reads", float64(s.DiskReads))
		r.sink.Emit(name, "disk_writes", float64(s.DiskWrites))
		r.sink.Emit(name, "origin_reads", float64(s.OriginReads))
		r.sink.Emit(name, "admitted", float64(s.Admitted))
		r.sink.Emit(name, "refused", float64(s.Refused))
		r.sink.Emit(name, "purges", float64(s.Purges))
		r.sink.Emit(name, "purged_bytes", float64(s.PurgedBytes))
		l.Admission().Report(name, r.sink)
		l.Eviction().Report(ts, name, r.sink)
	}

	if err := r.sink.Flush(ts); err != nil {
		r.logger.Error("flush report sinks failed", "ts", ts, "err", err)
	}
}

func (r *Reporter) Ideal() IdealStats { return r.ideal.Stats() }

// Reports counts emitted reports, periodic and forced.
func (r *Reporter) Reports() uint64 { return r.reports }
