package config

// Sim groups configuration of the whole simulation.
// It is loaded once, adjusted, validated and then shared read-only.
type Sim struct {
	// Seed drives every probabilistic decision (probabilistic admission).
	// Zero draws a seed from the wall clock, so runs are not reproducible.
	Seed int64 `yaml:"seed"`

	// Reporting configures periodic hit-ratio reports in trace time.
	// If nil, nothing is reported until an explicit report is requested.
	Reporting *ReportingCfg `yaml:"reporting"`

	// Purging configures the hourly purge cycle shared by every layer.
	Purging PurgingCfg `yaml:"purging"`

	// Customers lists customer ids with special treatment.
	Customers CustomersCfg `yaml:"customers"`

	// Layers is the cache chain, closest to the client first.
	Layers []*LayerCfg `yaml:"layers"`
}

type ReportingCfg struct {
	// Interval is the reporting period in seconds of trace time.
	// Defaults to 900 (15 minutes).
	Interval int64 `yaml:"interval"`

	// IsLogsEnabled additionally writes every report through the structured logger.
	IsLogsEnabled bool `yaml:"stat_logs_enabled"`
}

func (cfg *ReportingCfg) Enabled() bool {
	return cfg != nil
}

type PurgingCfg struct {
	// Interval is the length of one purge "hour" in seconds of trace time.
	// Defaults to 3600.
	Interval int64 `yaml:"interval"`
}
