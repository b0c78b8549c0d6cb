package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Borislavv/go-ash-sim/internal/hashfn"
	"gopkg.in/yaml.v3"
)

const (
	DefaultReportInterval  = 900
	DefaultPurgeInterval   = 3600
	DefaultQueues          = 4
	DefaultPurgeWatermark  = 0.8
	DefaultSizePurgeWindow = 100
	DefaultCostFormula     = 1
	DefaultLRUInterval     = 24
	DefaultDeviations      = 4
	DefaultAlpha           = 0.25
	MaxCostFormula         = 8
)

var (
	ErrNoLayers           = errors.New("no cache layers configured")
	ErrDuplicateLayer     = errors.New("duplicate layer name")
	ErrZeroCapacity       = errors.New("layer capacity is zero")
	ErrUnknownAdmission   = errors.New("unknown admission policy")
	ErrUnknownEviction    = errors.New("unknown eviction policy")
	ErrBloomRequired      = errors.New("second-hit admission requires a bloom config")
	ErrTooManyHashFuncs   = errors.New("bloom hash function count out of range")
	ErrInvalidOption      = errors.New("invalid option")
	ErrUnsupportedFormula = errors.New("unsupported cost formula")
)

// AdjustConfig fills defaults and computes virtual fields. Call it before Validate.
func (cfg *Sim) AdjustConfig() {
	if cfg.Reporting.Enabled() && cfg.Reporting.Interval <= 0 {
		cfg.Reporting.Interval = DefaultReportInterval
	}
	if cfg.Purging.Interval <= 0 {
		cfg.Purging.Interval = DefaultPurgeInterval
	}

	cfg.Customers.BypassSet = NewCustomerSet(cfg.Customers.BypassBloom...)
	cfg.Customers.ProtectedSet = NewCustomerSet(cfg.Customers.Protected...)

	for i, l := range cfg.Layers {
		if l == nil {
			continue
		}
		if l.Name == "" {
			l.Name = fmt.Sprintf("L%d", i)
		}
		if l.SizeBytes > 0 {
			l.CapacityBytes = l.SizeBytes
		} else {
			l.CapacityBytes = uint64(l.SizeGB * (1 << 30))
		}
		if l.RegularPurgeInterval <= 0 {
			l.RegularPurgeInterval = 1
		}

		if l.Admission.Policy == "" {
			l.Admission.Policy = AdmissionNull
		}
		if b := l.Admission.Bloom; b.Enabled() {
			b.Threshold = max(b.Threshold, 1)
			if family, err := hashfn.ParseFamily(b.Hash); err == nil {
				b.Family = family
			}
		}

		e := &l.Eviction
		if e.Policy == "" {
			e.Policy = EvictionLRU
		}
		if e.Queues <= 0 {
			e.Queues = DefaultQueues
		}
		if e.PurgeWatermark <= 0 {
			e.PurgeWatermark = DefaultPurgeWatermark
		}
		if e.SizePurgeWindow <= 0 {
			e.SizePurgeWindow = DefaultSizePurgeWindow
		}
		if e.Policy == EvictionCostLRU && !e.Cost.Enabled() {
			e.Cost = &CostCfg{}
		}
		if c := e.Cost; c.Enabled() {
			if c.Formula == 0 {
				c.Formula = DefaultCostFormula
			}
			if c.WAge == 0 && c.WSize == 0 {
				c.WAge, c.WSize = 1, 1
			}
			if c.Y == 0 {
				c.Y = 1
			}
			if c.LRUInterval <= 0 {
				c.LRUInterval = DefaultLRUInterval
			}
			if c.Deviations <= 0 {
				c.Deviations = DefaultDeviations
			}
			if c.Alpha <= 0 {
				c.Alpha = DefaultAlpha
			}
		}
	}
}

// Validate rejects configurations the simulator cannot run with.
func (cfg *Sim) Validate() error {
	if len(cfg.Layers) == 0 {
		return ErrNoLayers
	}
	names := make(map[string]struct{}, len(cfg.Layers))
	for i, l := range cfg.Layers {
		if l == nil {
			return fmt.Errorf("layer #%d: %w", i, ErrInvalidOption)
		}
		if _, dup := names[l.Name]; dup {
			return fmt.Errorf("layer %q: %w", l.Name, ErrDuplicateLayer)
		}
		names[l.Name] = struct{}{}

		if l.CapacityBytes == 0 {
			return fmt.Errorf("layer %q: %w", l.Name, ErrZeroCapacity)
		}
		if err := l.Admission.validate(); err != nil {
			return fmt.Errorf("layer %q admission: %w", l.Name, err)
		}
		if err := l.Eviction.validate(); err != nil {
			return fmt.Errorf("layer %q eviction: %w", l.Name, err)
		}
	}
	return nil
}

func (cfg *AdmissionCfg) validate() error {
	switch cfg.Policy {
	case AdmissionNull, AdmissionSize:
	case AdmissionProb:
		if cfg.Probability < 0 || cfg.Probability > 1 || math.IsNaN(cfg.Probability) {
			return fmt.Errorf("probability %v: %w", cfg.Probability, ErrInvalidOption)
		}
	case AdmissionProbSize:
		if !(cfg.SizeC > 0) {
			return fmt.Errorf("size_c %v: %w", cfg.SizeC, ErrInvalidOption)
		}
	case AdmissionSecondHit, AdmissionSecondHitRotating:
		b := cfg.Bloom
		if !b.Enabled() {
			return ErrBloomRequired
		}
		if b.HashFuncs < 1 || b.HashFuncs > hashfn.MaxFuncs {
			return fmt.Errorf("%d functions, max %d: %w", b.HashFuncs, hashfn.MaxFuncs, ErrTooManyHashFuncs)
		}
		if b.Bits == 0 {
			return fmt.Errorf("bloom bits: %w", ErrInvalidOption)
		}
		if _, err := hashfn.ParseFamily(b.Hash); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		if cfg.Policy == AdmissionSecondHitRotating && b.MaxAge <= 0 {
			return fmt.Errorf("bloom max_age: %w", ErrInvalidOption)
		}
	default:
		return fmt.Errorf("%q: %w", cfg.Policy, ErrUnknownAdmission)
	}
	return nil
}

func (cfg *EvictionCfg) validate() error {
	switch cfg.Policy {
	case EvictionLRU, EvictionFIFO, EvictionS4LRU, EvictionSizeLRU:
	case EvictionCostLRU:
		if !cfg.Cost.Enabled() {
			return fmt.Errorf("cost: %w", ErrInvalidOption)
		}
		if f := cfg.Cost.Formula; f < 1 || f > MaxCostFormula {
			return fmt.Errorf("formula %d: %w", f, ErrUnsupportedFormula)
		}
	default:
		return fmt.Errorf("%q: %w", cfg.Policy, ErrUnknownEviction)
	}
	if cfg.PurgeWatermark > 1 {
		return fmt.Errorf("purge_watermark %v: %w", cfg.PurgeWatermark, ErrInvalidOption)
	}
	return nil
}

// LoadConfig reads, adjusts and validates a YAML config.
func LoadConfig(path string) (*Sim, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Sim
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config %s: %w", path, ErrNoLayers)
	}
	cfg.AdjustConfig()

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}
