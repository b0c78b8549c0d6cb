package help

import "github.com/Borislavv/go-ash-sim/config"

// Cfg is a single-layer LRU chain of capacity bytes with null admission.
func Cfg(capacity uint64) *config.Sim {
	c := &config.Sim{
		Seed: 42,
		Layers: []*config.LayerCfg{
			{
				Name:            "hd",
				SizeBytes:       capacity,
				IsHourlyPurging: true,
				Admission:       config.AdmissionCfg{Policy: config.AdmissionNull},
				Eviction:        config.EvictionCfg{Policy: config.EvictionLRU},
			},
		},
	}
	c.AdjustConfig()
	return c
}

// TwoTierCfg is a RAM layer in front of a second-hit disk layer.
func TwoTierCfg(ramBytes, diskBytes uint64, bloomFile string) *config.Sim {
	c := &config.Sim{
		Seed:      42,
		Reporting: &config.ReportingCfg{Interval: 900, IsLogsEnabled: true},
		Customers: config.CustomersCfg{BypassBloom: []string{"BYPS"}},
		Layers: []*config.LayerCfg{
			{
				Name:      "ram",
				SizeBytes: ramBytes,
				Admission: config.AdmissionCfg{Policy: config.AdmissionNull},
				Eviction:  config.EvictionCfg{Policy: config.EvictionS4LRU, Queues: 2},
			},
			{
				Name:            "hd",
				SizeBytes:       diskBytes,
				IsHourlyPurging: true,
				Admission: config.AdmissionCfg{
					Policy: config.AdmissionSecondHit,
					Bloom: &config.BloomCfg{
						File:      bloomFile,
						Bits:      1 << 16,
						HashFuncs: 4,
					},
				},
				Eviction: config.EvictionCfg{Policy: config.EvictionLRU},
			},
		},
	}
	c.AdjustConfig()
	return c
}
