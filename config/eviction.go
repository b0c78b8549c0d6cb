package config

// EvictionPolicy names an eviction policy.
type EvictionPolicy string

const (
	EvictionLRU     EvictionPolicy = "lru"
	EvictionFIFO    EvictionPolicy = "fifo"
	EvictionS4LRU   EvictionPolicy = "s4lru"
	EvictionCostLRU EvictionPolicy = "cost_lru"
	EvictionSizeLRU EvictionPolicy = "size_lru"
)

type EvictionCfg struct {
	// Policy selects the eviction policy. Defaults to "lru".
	Policy EvictionPolicy `yaml:"policy"`

	// Queues is the number of segments of "s4lru". Defaults to 4.
	Queues int `yaml:"queues"`

	// PurgeWatermark is the fraction of capacity that the hourly purge of
	// "lru" and "fifo" trims down to. Defaults to 0.8.
	PurgeWatermark float64 `yaml:"purge_watermark"`

	// SizePurgeWindow is the number of least recent entries "size_lru"
	// inspects when picking the largest victim. Defaults to 100.
	SizePurgeWindow int `yaml:"size_purge_window"`

	// Cost configures "cost_lru". Defaults apply when nil.
	Cost *CostCfg `yaml:"cost"`
}

// CostCfg configures the cost-weighted LRU scoring.
//
// Formulas (A is age in seconds, S the size score, a the age score):
//
//	1: a*WAge + S*WSize
//	2: formula 1 times 1.0 for bypass customers, 0.5 otherwise
//	3: A * S*WSize
//	4: A^Y * (S*WSize + E)
//	5: A^Y * (S*WSize + A)
//	6: A^Y + S*WSize*A
//	7: A^Y * (S*WSize*span + E)
//	8: a every LRUInterval purge hours, formula 1 otherwise
type CostCfg struct {
	Formula int     `yaml:"formula"`
	WAge    float64 `yaml:"w_age"`
	WSize   float64 `yaml:"w_size"`
	Y       float64 `yaml:"ef4_y"`
	E       float64 `yaml:"ef4_e"`

	// LRUInterval is the period in purge hours of pure age ranking (formula 8).
	LRUInterval int `yaml:"lru_interval"`

	// Deviations bounds the size score to mean ± Deviations standard deviations
	// of log2(size). Defaults to 4.
	Deviations float64 `yaml:"deviations"`

	// Alpha is the smoothing factor of the running log2(size) moments. Defaults to 0.25.
	Alpha float64 `yaml:"alpha"`
}

func (cfg *CostCfg) Enabled() bool {
	return cfg != nil
}
