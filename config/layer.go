package config

// LayerCfg configures one cache layer of the chain.
type LayerCfg struct {
	// Name identifies the layer in reports, e.g. "ram" or "hd".
	// Defaults to "L<index>".
	Name string `yaml:"name"`

	// SizeGB is the layer capacity in gigabytes (2^30 bytes).
	SizeGB float64 `yaml:"size_gb"`

	// SizeBytes overrides SizeGB with an exact capacity when positive.
	SizeBytes uint64 `yaml:"size_bytes"`

	// RespectLowerAdmission makes the layer refuse an object that the layer
	// below it missed and refused to admit.
	RespectLowerAdmission bool `yaml:"respect_lower_admission"`

	// IsHourlyPurging enables the eviction policy hourly purge for this layer.
	IsHourlyPurging bool `yaml:"hourly_purging"`

	// RegularPurgeInterval is the number of purge hours between two hourly purges.
	// Defaults to 1 (every hour).
	RegularPurgeInterval int `yaml:"regular_purge_interval"`

	// StoreAccessLine keeps the raw access line and URL in every entry.
	// Otherwise the URL is stored as "NA" and the line is dropped.
	StoreAccessLine bool `yaml:"store_access_line_and_url"`

	Admission AdmissionCfg `yaml:"admission"`
	Eviction  EvictionCfg  `yaml:"eviction"`

	// CapacityBytes is derived from SizeBytes or SizeGB. It is not read from YAML.
	CapacityBytes uint64 // virtual: computed during init
}
