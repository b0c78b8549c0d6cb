// Package admission decides whether a missed object may be stored in a layer.
package admission

import (
	"fmt"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/report"
	"github.com/Borislavv/go-ash-sim/internal/shared/random"
)

type Policy interface {
	// Check returns true when the object is admitted. data is the number of
	// bytes served to the client, size the object size.
	Check(key string, data, size uint64, ts int64, customerID string) bool
	Name() string
	Report(layer string, sink report.Sink)
}

// Flusher is implemented by policies with on-disk state.
type Flusher interface {
	Flush() error
}

// New builds the policy named by cfg. rnd feeds the probabilistic policies.
func New(cfg *config.AdmissionCfg, customers *config.CustomersCfg, rnd *random.Source) (Policy, error) {
	switch cfg.Policy {
	case "", config.AdmissionNull:
		return Null{}, nil
	case config.AdmissionSize:
		return NewSize(cfg.SizeThreshold), nil
	case config.AdmissionProb:
		return NewProb(cfg.Probability, rnd), nil
	case config.AdmissionProbSize:
		return NewProbSize(cfg.SizeC, rnd), nil
	case config.AdmissionSecondHit:
		if !cfg.Bloom.Enabled() {
			return nil, config.ErrBloomRequired
		}
		return NewSecondHit(cfg.Bloom, customers.BypassSet), nil
	case config.AdmissionSecondHitRotating:
		if !cfg.Bloom.Enabled() {
			return nil, config.ErrBloomRequired
		}
		return NewRotatingSecondHit(cfg.Bloom, customers.BypassSet), nil
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Policy, config.ErrUnknownAdmission)
	}
}

// Null admits everything.
type Null struct{}

func (Null) Check(string, uint64, uint64, int64, string) bool { return true }
func (Null) Name() string                                     { return string(config.AdmissionNull) }
func (Null) Report(string, report.Sink)                       {}
