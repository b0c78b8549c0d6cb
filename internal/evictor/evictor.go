// Package evictor drives the periodic purge and flush cycles of the cache chain
// on trace time.
package evictor

import (
	"log/slog"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/cache"
)

type Evictor interface {
	// Observe advances the scheduler to ts. Timestamps must not decrease.
	Observe(ts int64)
	Metrics() (scans, purges, flushes, flushErrors int64)
}

type layerState struct {
	layer *cache.Layer
	// ticks counts purge hours since the last regular purge of the layer.
	ticks int
	every int
	// flushEvery is zero when the layer flushes only on close.
	flushEvery int64
	lastFlush  int64
}

// Scheduler runs HourlyPurge on each layer once per regular_purge_interval
// purge hours and flushes bloom snapshots every flush_interval seconds.
type Scheduler struct {
	interval int64
	logger   *slog.Logger
	layers   []*layerState
	counters *evictorCounters
	last     int64
	started  bool
}

// New returns a NoOpEvictor when no layer purges hourly or flushes periodically.
func New(cfg *config.Sim, logger *slog.Logger, chain *cache.Chain) Evictor {
	layers := make([]*layerState, 0, len(chain.Layers()))
	var active bool
	for _, l := range chain.Layers() {
		st := &layerState{layer: l, every: max(l.Config().RegularPurgeInterval, 1)}
		if b := l.Config().Admission.Bloom; b.Enabled() && b.File != "" && b.FlushInterval > 0 {
			st.flushEvery = b.FlushInterval
		}
		active = active || l.Config().IsHourlyPurging || st.flushEvery > 0
		layers = append(layers, st)
	}
	if !active {
		return NoOpEvictor{}
	}

	interval := cfg.Purging.Interval
	if interval <= 0 {
		interval = config.DefaultPurgeInterval
	}

	logger.Info("evictor is running", "purge_interval_sec", interval, "layers", len(layers))

	return &Scheduler{
		interval: interval,
		logger:   logger,
		layers:   layers,
		counters: newEvictorCounters(),
	}
}

func (s *Scheduler) Observe(ts int64) {
	if !s.started {
		s.last, s.started = ts, true
		for _, st := range s.layers {
			st.lastFlush = ts
		}
		return
	}

	if ts-s.last > s.interval {
		s.last = ts
		s.purge(ts)
	}

	for _, st := range s.layers {
		if st.flushEvery > 0 && ts-st.lastFlush > st.flushEvery {
			st.lastFlush = ts
			s.flush(st)
		}
	}
}

func (s *Scheduler) Metrics() (scans, purges, flushes, flushErrors int64) {
	return s.counters.snapshot()
}

func (s *Scheduler) purge(ts int64) {
	s.counters.scans.Add(1)
	for _, st := range s.layers {
		st.ticks++
		if st.ticks < st.every {
			continue
		}
		st.ticks = 0
		if st.layer.HourlyPurge(ts) {
			s.counters.purges.Add(1)
		}
	}
}

func (s *Scheduler) flush(st *layerState) {
	s.counters.flushes.Add(1)
	if err := st.layer.Flush(); err != nil {
		s.counters.flushErrors.Add(1)
		s.logger.Error("periodic bloom flush failed", "layer", st.layer.Name(), "err", err)
	}
}
