package admission

import (
	"errors"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/bloom"
	"github.com/Borislavv/go-ash-sim/internal/report"
)

func bloomOptions(cfg *config.BloomCfg) bloom.Options {
	return bloom.Options{
		Bits:      cfg.Bits,
		Funcs:     cfg.HashFuncs,
		Threshold: cfg.Threshold,
		Counting:  cfg.Counting,
		Family:    cfg.Family,
	}
}

func reportFilter(layer string, f *bloom.Filter, sink report.Sink) {
	st := f.Stats()
	sink.Emit(layer, "bloom_set_bits", float64(st.SetBits))
	sink.Emit(layer, "bloom_fill_percentage", st.FillPercentage)
	sink.Emit(layer, "bloom_fpr_percentage", st.FPRPercentage)
}

// SecondHit admits an object the second time the filter sees it
// (the N-th time in counting mode). Bypass customers are always admitted.
type SecondHit struct {
	filter *bloom.Filter
	bypass config.CustomerSet
	path   string
}

// NewSecondHit starts from the snapshot at cfg.File when it exists.
func NewSecondHit(cfg *config.BloomCfg, bypass config.CustomerSet) *SecondHit {
	return &SecondHit{
		filter: bloom.Load(cfg.File, bloomOptions(cfg)),
		bypass: bypass,
		path:   cfg.File,
	}
}

func (p *SecondHit) Check(key string, _, _ uint64, _ int64, customerID string) bool {
	if p.bypass.Flagged(customerID) {
		return true
	}
	if p.filter.Check(key) {
		return true
	}
	p.filter.Add(key)
	return false
}

// Flush merges the filter into its snapshot file.
func (p *SecondHit) Flush() error {
	if p.path == "" {
		return nil
	}
	return p.filter.Save(p.path)
}

func (p *SecondHit) Name() string { return string(config.AdmissionSecondHit) }

func (p *SecondHit) Report(layer string, sink report.Sink) {
	reportFilter(layer, p.filter, sink)
}

// RotatingSecondHit is SecondHit over two filter generations. The newest
// generation is replaced by an empty one once it is older than maxAge
// seconds of trace time, and the previous newest is kept as the old one.
type RotatingSecondHit struct {
	opts   bloom.Options
	path   string
	maxAge int64
	bypass config.CustomerSet

	newest, previous *bloom.Filter
	born             int64
	started          bool
	rotations        uint64
}

// NewRotatingSecondHit starts the first generation from the snapshot at cfg.File.
func NewRotatingSecondHit(cfg *config.BloomCfg, bypass config.CustomerSet) *RotatingSecondHit {
	opts := bloomOptions(cfg)
	return &RotatingSecondHit{
		opts:   opts,
		path:   cfg.File,
		maxAge: cfg.MaxAge,
		bypass: bypass,
		newest: bloom.Load(cfg.File, opts),
	}
}

func (p *RotatingSecondHit) Check(key string, _, _ uint64, ts int64, customerID string) bool {
	if p.bypass.Flagged(customerID) {
		return true
	}

	if !p.started {
		p.born, p.started = ts, true
	}
	if ts-p.born > p.maxAge {
		p.previous, p.newest = p.newest, bloom.New(p.opts)
		p.born = ts
		p.rotations++
	}

	if p.newest.Check(key) {
		return true
	}
	p.newest.Add(key)
	return p.previous != nil && p.previous.Check(key)
}

// Flush merges both generations into the snapshot file.
func (p *RotatingSecondHit) Flush() error {
	if p.path == "" {
		return nil
	}
	var errs []error
	if p.previous != nil {
		errs = append(errs, p.previous.Save(p.path))
	}
	errs = append(errs, p.newest.Save(p.path))
	return errors.Join(errs...)
}

// Generations reports how many filters are live.
func (p *RotatingSecondHit) Generations() int {
	if p.previous == nil {
		return 1
	}
	return 2
}

func (p *RotatingSecondHit) Name() string { return string(config.AdmissionSecondHitRotating) }

func (p *RotatingSecondHit) Report(layer string, sink report.Sink) {
	reportFilter(layer, p.newest, sink)
	sink.Emit(layer, "bloom_rotations", float64(p.rotations))
}
