// Package bloom implements the second-hit filter: a k-probe bloom filter with
// an optional saturating counting mode and an on-disk snapshot that several
// simulator processes can merge into.
package bloom

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/Borislavv/go-ash-sim/internal/hashfn"
)

type Options struct {
	// Bits is the number of slots.
	Bits uint64
	// Funcs is the number of probes per key, at most hashfn.MaxFuncs.
	Funcs int
	// Threshold is the counter value a slot must reach to count as set (counting mode).
	Threshold uint8
	// Counting switches Add to increment per-slot counters.
	Counting bool
	Family   hashfn.Family
}

// Filter is a bloom filter over string keys. Not safe for concurrent use.
//
// The bitmap is MSB-first inside each byte, so slot n lives at bit 7-(n&7) of
// byte n>>3. In counting mode the bitmap mirrors saturated counters, which keeps
// membership checks identical in both modes and the snapshot format shared.
type Filter struct {
	bitmap    []byte
	counters  []uint8
	nbits     uint64
	funcs     int
	threshold uint8
	hash      hashfn.Func
	saturated uint64
}

// New builds an empty filter. It panics when the options describe an invalid filter.
func New(opts Options) *Filter {
	if opts.Funcs <= 0 || opts.Funcs > hashfn.MaxFuncs {
		panic(fmt.Sprintf("bloom: %d hash functions requested, supported range is [1,%d]", opts.Funcs, hashfn.MaxFuncs))
	}
	if opts.Bits == 0 {
		panic("bloom: zero-sized filter")
	}
	f := &Filter{
		bitmap:    make([]byte, SnapshotLen(opts.Bits)),
		nbits:     opts.Bits,
		funcs:     opts.Funcs,
		threshold: max(opts.Threshold, 1),
		hash:      opts.Family.Func(),
	}
	if opts.Counting {
		f.counters = make([]uint8, opts.Bits)
	}
	return f
}

// SnapshotLen is the on-disk size of a filter with the given number of slots.
func SnapshotLen(nbits uint64) int {
	return int((nbits + 7) >> 3)
}

func (f *Filter) Counting() bool { return f.counters != nil }

// Check reports whether every probe of key is set.
func (f *Filter) Check(key string) bool {
	for i := 0; i < f.funcs; i++ {
		if !f.bit(f.slot(key, i)) {
			return false
		}
	}
	return true
}

// Add records key. In counting mode each probed counter grows up to the threshold.
func (f *Filter) Add(key string) {
	for i := 0; i < f.funcs; i++ {
		n := f.slot(key, i)
		if f.counters == nil {
			f.setBit(n)
			continue
		}
		if f.counters[n] < f.threshold {
			f.counters[n]++
			if f.counters[n] == f.threshold {
				f.saturated++
				f.setBit(n)
			}
		}
	}
}

// Remove decrements the probed counters. Other keys sharing a slot may be
// forgotten as well. Bit mode has no deletion and ignores the call.
func (f *Filter) Remove(key string) {
	if f.counters == nil {
		return
	}
	for i := 0; i < f.funcs; i++ {
		n := f.slot(key, i)
		if f.counters[n] == 0 {
			continue
		}
		if f.counters[n] == f.threshold {
			f.saturated--
			f.clearBit(n)
		}
		f.counters[n]--
	}
}

// Reset zeroes the filter.
func (f *Filter) Reset() {
	clear(f.bitmap)
	clear(f.counters)
	f.saturated = 0
}

// Bytes returns a copy of the bitmap in snapshot format.
func (f *Filter) Bytes() []byte {
	out := make([]byte, len(f.bitmap))
	copy(out, f.bitmap)
	return out
}

// restore replaces the bitmap with a snapshot of the same length.
func (f *Filter) restore(snapshot []byte) {
	copy(f.bitmap, snapshot)
	if f.counters == nil {
		return
	}
	f.saturated = 0
	for n := uint64(0); n < f.nbits; n++ {
		if f.bit(n) {
			f.counters[n] = f.threshold
			f.saturated++
		} else {
			f.counters[n] = 0
		}
	}
}

type Stats struct {
	Funcs          int
	SizeMB         float64
	SetBits        uint64
	FillPercentage float64
	FPRPercentage  float64
}

// Stats reports occupancy and the false-positive estimate 100*fill^k.
func (f *Filter) Stats() Stats {
	set := f.saturated
	sizeMB := float64(f.nbits) / 8 / 1024 / 1024
	if f.counters == nil {
		set = 0
		for _, b := range f.bitmap {
			set += uint64(bits.OnesCount8(b))
		}
	} else {
		sizeMB *= 8
	}
	fill := float64(set) / float64(f.nbits)
	return Stats{
		Funcs:          f.funcs,
		SizeMB:         sizeMB,
		SetBits:        set,
		FillPercentage: 100 * fill,
		FPRPercentage:  100 * math.Pow(fill, float64(f.funcs)),
	}
}

func (f *Filter) slot(key string, i int) uint64 {
	return f.hash(key, i) % f.nbits
}

func (f *Filter) bit(n uint64) bool {
	return f.bitmap[n>>3]&(0x80>>(n&7)) != 0
}

func (f *Filter) setBit(n uint64) {
	f.bitmap[n>>3] |= 0x80 >> (n & 7)
}

func (f *Filter) clearBit(n uint64) {
	f.bitmap[n>>3] &^= 0x80 >> (n & 7)
}
