// Package ashsim replays request traces through a tiered cache chain and
// reports hit and byte-hit ratios over trace time.
package ashsim

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/cache"
	"github.com/Borislavv/go-ash-sim/internal/evictor"
	"github.com/Borislavv/go-ash-sim/internal/report"
	"github.com/Borislavv/go-ash-sim/internal/shared/random"
	"github.com/Borislavv/go-ash-sim/internal/shared/rate"
	"github.com/Borislavv/go-ash-sim/internal/telemetry"
	"github.com/Borislavv/go-ash-sim/internal/trace"
	"github.com/Borislavv/go-ash-sim/model"
)

// ctxCheckEvery is how many replayed events pass between cancellation checks.
const ctxCheckEvery = 4096

type Sim interface {
	Process(ev model.Event) bool
	Report(ts int64)
	Stats() Stats
	io.Closer
}

// Simulator is single-threaded: one event is processed at a time and
// timestamps must not decrease.
type Simulator struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Sim
	logger   *slog.Logger
	chain    *cache.Chain
	evictor  evictor.Evictor
	reporter *telemetry.Reporter

	events uint64
	lastTS int64
	closed bool
}

var _ Sim = (*Simulator)(nil)

// New builds the chain described by cfg. cfg must be adjusted; it is validated here.
func New(ctx context.Context, cfg *config.Sim, logger *slog.Logger, sinks ...report.Sink) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	chain, err := cache.NewChain(cfg, random.New(cfg.Seed), logger)
	if err != nil {
		return nil, err
	}
	ev := evictor.New(cfg, logger, chain)

	ctx, cancel := context.WithCancel(ctx)
	return &Simulator{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		chain:    chain,
		evictor:  ev,
		reporter: telemetry.New(cfg, logger, chain, ev, sinks...),
	}, nil
}

// Process runs periodic purges due at ev's time, sends ev through the chain
// and reports whether the head layer served or stored it.
func (s *Simulator) Process(ev model.Event) bool {
	ev.Normalize()
	s.evictor.Observe(ev.Timestamp)
	served := s.chain.Process(&ev)
	s.reporter.Observe(&ev)
	s.events++
	s.lastTS = ev.Timestamp
	return served
}

// ReplayOption tunes one Replay call.
type ReplayOption func(*replayOpts)

type replayOpts struct {
	pacer *rate.Pacer
}

// WithRate caps replay at eventsPerSec events per wall-clock second.
// Trace time is unaffected; non-positive values disable pacing.
func WithRate(eventsPerSec int) ReplayOption {
	return func(o *replayOpts) {
		o.pacer = rate.NewPacer(eventsPerSec)
	}
}

// Replay processes every event of a trace stream until EOF or until the
// context passed to New is cancelled.
func (s *Simulator) Replay(r io.Reader, opts ...ReplayOption) (ReplayStats, error) {
	var o replayOpts
	for _, opt := range opts {
		opt(&o)
	}

	tr := trace.NewReader(r, s.logger)
	var n uint64
	for tr.Next() {
		if n%ctxCheckEvery == 0 {
			if err := s.ctx.Err(); err != nil {
				return ReplayStats{Events: n, Skipped: tr.Skipped()}, err
			}
		}
		o.pacer.Take()
		s.Process(tr.Event())
		n++
	}
	st := ReplayStats{Events: n, Skipped: tr.Skipped()}
	if err := tr.Err(); err != nil {
		return st, fmt.Errorf("read trace: %w", err)
	}
	return st, nil
}

// Report forces a report covering the events since the previous one.
func (s *Simulator) Report(ts int64) {
	s.reporter.Report(ts)
}

// Flush merges bloom filters into their snapshot files.
func (s *Simulator) Flush() error {
	return s.chain.Flush()
}

func (s *Simulator) Stats() Stats {
	st := Stats{
		Events:    s.events,
		Timestamp: s.lastTS,
		Ideal:     s.reporter.Ideal(),
		Layers:    make([]LayerStats, 0, len(s.chain.Layers())),
	}
	head := s.chain.Head()
	hs := head.Stats()
	st.HitRatio = ratio(head.HitTotal(), hs.Hits+hs.Misses)
	st.ByteHitRatio = ratio(head.HitBytesTotal(), hs.ByteHits+hs.ByteMisses)
	st.OriginReads = head.OriginReadsTotal()
	st.PurgeCycles, st.Purges, st.Flushes, st.FlushErrors = s.evictor.Metrics()

	for _, l := range s.chain.Layers() {
		st.Layers = append(st.Layers, LayerStats{Name: l.Name(), Stats: l.Stats()})
	}
	return st
}

// Close flushes bloom snapshots once. Later calls return nil.
func (s *Simulator) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()

	if err := s.chain.Flush(); err != nil {
		return fmt.Errorf("final bloom flush: %w", err)
	}
	s.logger.Info("simulator is closed", "events", s.events, "last_ts", s.lastTS)
	return nil
}
