package evictor

// NoOpEvictor is used when no layer needs a periodic cycle.
// It observes nothing and reports zero metrics.
type NoOpEvictor struct{}

// Observe does nothing.
func (NoOpEvictor) Observe(int64) {}

// Metrics always returns zero values.
func (NoOpEvictor) Metrics() (scans, purges, flushes, flushErrors int64) {
	return 0, 0, 0, 0
}
