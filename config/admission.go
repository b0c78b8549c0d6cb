package config

import "github.com/Borislavv/go-ash-sim/internal/hashfn"

// AdmissionPolicy names an admission policy.
type AdmissionPolicy string

const (
	// AdmissionNull admits everything.
	AdmissionNull AdmissionPolicy = "null"
	// AdmissionSize admits objects strictly smaller than SizeThreshold.
	AdmissionSize AdmissionPolicy = "size"
	// AdmissionProb admits with probability Probability.
	AdmissionProb AdmissionPolicy = "prob"
	// AdmissionProbSize admits with probability exp(-size/SizeC).
	AdmissionProbSize AdmissionPolicy = "prob_size"
	// AdmissionSecondHit admits on the second request seen by the bloom filter.
	AdmissionSecondHit AdmissionPolicy = "second_hit"
	// AdmissionSecondHitRotating is AdmissionSecondHit over two aging filter generations.
	AdmissionSecondHitRotating AdmissionPolicy = "second_hit_rotating"
)

type AdmissionCfg struct {
	// Policy selects the admission policy. Defaults to "null".
	Policy AdmissionPolicy `yaml:"policy"`

	// SizeThreshold is the exclusive upper bound in bytes for the "size" policy.
	SizeThreshold uint64 `yaml:"size_threshold"`

	// Probability is the admission probability in [0,1] for the "prob" policy.
	Probability float64 `yaml:"probability"`

	// SizeC is the size scale in bytes of the "prob_size" policy.
	SizeC float64 `yaml:"size_c"`

	// Bloom configures the filter of the second-hit policies.
	Bloom *BloomCfg `yaml:"bloom"`
}

// BloomCfg configures a second-hit bloom filter.
type BloomCfg struct {
	// File is the snapshot path. The filter starts from it and flushes into it.
	// Empty disables persistence.
	File string `yaml:"file"`

	// Bits is the number of filter slots.
	Bits uint64 `yaml:"bits"`

	// HashFuncs is the number of probes per key, at most 10.
	HashFuncs int `yaml:"hash_funcs"`

	// Hash selects the hash family: "bkdr" (default) or "xxh3".
	Hash string `yaml:"hash"`

	// Counting switches to saturating counters; an object is admitted once its
	// counters reach Threshold.
	Counting bool `yaml:"counting"`

	// Threshold is the counting-mode saturation value. Defaults to 1.
	Threshold uint8 `yaml:"threshold"`

	// MaxAge is the generation lifetime in seconds of trace time (rotating policy only).
	MaxAge int64 `yaml:"max_age"`

	// FlushInterval is the period in seconds of trace time between snapshot flushes.
	// Zero flushes only when the simulator is closed.
	FlushInterval int64 `yaml:"flush_interval"`

	// Family is parsed from Hash. It is not read from YAML.
	Family hashfn.Family // virtual: computed during init
}

func (cfg *BloomCfg) Enabled() bool {
	return cfg != nil
}
