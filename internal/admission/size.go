package admission

import (
	"math"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/report"
	"github.com/Borislavv/go-ash-sim/internal/shared/random"
)

// Size admits objects strictly smaller than the threshold.
type Size struct {
	threshold uint64
}

func NewSize(threshold uint64) *Size {
	return &Size{threshold: threshold}
}

func (p *Size) Check(_ string, _, size uint64, _ int64, _ string) bool {
	return size < p.threshold
}

func (p *Size) Name() string { return string(config.AdmissionSize) }

func (p *Size) Report(layer string, sink report.Sink) {
	sink.Emit(layer, "size_threshold", float64(p.threshold))
}

// Prob admits with a fixed probability.
type Prob struct {
	p   float64
	rnd *random.Source
}

func NewProb(p float64, rnd *random.Source) *Prob {
	return &Prob{p: p, rnd: rnd}
}

func (p *Prob) Check(string, uint64, uint64, int64, string) bool {
	return p.rnd.Float64() < p.p
}

func (p *Prob) Name() string { return string(config.AdmissionProb) }

func (p *Prob) Report(layer string, sink report.Sink) {
	sink.Emit(layer, "probability", p.p)
}

// ProbSize admits with probability exp(-size/c), favouring small objects.
type ProbSize struct {
	c   float64
	rnd *random.Source
}

func NewProbSize(c float64, rnd *random.Source) *ProbSize {
	return &ProbSize{c: c, rnd: rnd}
}

func (p *ProbSize) Check(_ string, _, size uint64, _ int64, _ string) bool {
	return p.rnd.Float64() < math.Exp(-float64(size)/p.c)
}

func (p *ProbSize) Name() string { return string(config.AdmissionProbSize) }

func (p *ProbSize) Report(layer string, sink report.Sink) {
	sink.Emit(layer, "size_c", p.c)
}
