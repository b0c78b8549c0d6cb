// Package hashfn provides the seeded string hash families used to derive
// bloom filter probe positions.
package hashfn

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// MaxFuncs is the number of independent seeds available to a family.
const MaxFuncs = 10

const positiveMask = 0x7fffffffffffffff

// seeds are the BKDR multipliers; index i selects the i-th hash function.
var seeds = [MaxFuncs]uint64{
	31,
	131,
	1313,
	13131,
	131313,
	1313131,
	13131313,
	131313131,
	1313131313,
	13131313131,
}

// Func maps a key to a non-negative 64-bit hash using the i-th seed.
type Func func(key string, i int) uint64

// Family names a hash family selectable from config.
type Family string

const (
	FamilyBKDR Family = "bkdr"
	FamilyXXH3 Family = "xxh3"
)

// ParseFamily resolves a config value. Empty selects BKDR.
func ParseFamily(s string) (Family, error) {
	switch Family(strings.ToLower(strings.TrimSpace(s))) {
	case "", FamilyBKDR:
		return FamilyBKDR, nil
	case FamilyXXH3:
		return FamilyXXH3, nil
	default:
		return "", fmt.Errorf("unknown hash family %q", s)
	}
}

// Func returns the hashing function of the family. Unknown values fall back to BKDR.
func (f Family) Func() Func {
	if f == FamilyXXH3 {
		return XXH3
	}
	return BKDR
}

// BKDR computes h = h*seed[i] + b over the key bytes, with the sign bit cleared.
func BKDR(key string, i int) uint64 {
	seed := seedAt(i)
	var h uint64
	for j := 0; j < len(key); j++ {
		h = h*seed + uint64(key[j])
	}
	return h & positiveMask
}

// XXH3 is a seeded xxh3 family sharing the BKDR seed table.
func XXH3(key string, i int) uint64 {
	return xxh3.HashStringSeed(key, seedAt(i)) & positiveMask
}

func seedAt(i int) uint64 {
	if i < 0 || i >= MaxFuncs {
		panic(fmt.Sprintf("hashfn: function index %d out of range [0,%d)", i, MaxFuncs))
	}
	return seeds[i]
}
