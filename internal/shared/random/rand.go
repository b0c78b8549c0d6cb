package random

import "time"

const golden = 0x9e3779b97f4a7c15

// Source is a SplitMix64 generator. It is not safe for concurrent use;
// each cache layer owns its own instance so a fixed seed replays identically.
type Source struct {
	// SplitMix64 64-bit state.
	state uint64
}

// New seeds a source. A zero seed draws one from the wall clock.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{state: splitmixSeed(seed)}
}

// Derive returns an independent source for the n-th consumer of the same seed.
func (s *Source) Derive(n int) *Source {
	st := s.state + uint64(n+1)*golden
	return &Source{state: splitmixNext(&st)}
}

// Uint64 returns the next 64 random bits.
func (s *Source) Uint64() uint64 {
	return splitmixNext(&s.state)
}

// Float64 returns a uniform in [0,1) using 53 random bits (double precision).
func (s *Source) Float64() float64 {
	x := splitmixNext(&s.state)
	// take top 53 bits -> [0,1)
	const inv53 = 1.0 / 9007199254740992.0 // 2^53
	return float64(x>>11) * inv53
}

// splitmixNext advances s and returns a mixed 64-bit value.
func splitmixNext(s *uint64) uint64 {
	*s += golden
	z := *s
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return z
}

// splitmixSeed turns a signed seed into a decent 64-bit starting state.
func splitmixSeed(seed int64) uint64 {
	z := uint64(seed) + golden
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	if z == 0 {
		z = golden
	}
	return z
}
