package telemetry

// Ideal is an infinite cache: every key is a hit after its first request.
// It bounds what any real chain could reach on the same trace.
type Ideal struct {
	seen      map[string]struct{}
	hits      uint64
	misses    uint64
	hitBytes  uint64
	missBytes uint64
}

type IdealStats struct {
	Hits      uint64
	Misses    uint64
	HitBytes  uint64
	MissBytes uint64
	Keys      int
}

func NewIdeal() *Ideal {
	return &Ideal{seen: make(map[string]struct{})}
}

// Observe records one request and reports whether it would hit.
func (i *Ideal) Observe(key string, size uint64) bool {
	if _, ok := i.seen[key]; ok {
		i.hits++
		i.hitBytes += size
		return true
	}
	i.seen[key] = struct{}{}
	i.misses++
	i.missBytes += size
	return false
}

func (i *Ideal) Stats() IdealStats {
	return IdealStats{
		Hits:      i.hits,
		Misses:    i.misses,
		HitBytes:  i.hitBytes,
		MissBytes: i.missBytes,
		Keys:      len(i.seen),
	}
}
