package eviction

import (
	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/report"
)

// SizeLRU orders entries by recency like LRU but, under capacity pressure,
// evicts the largest entry among the window least recent ones. Entries of
// protected customers are never picked from the window.
type SizeLRU struct {
	table
	q         queue
	window    int
	protected CustomerFlags
}

func NewSizeLRU(capacity uint64, window int, protected CustomerFlags) *SizeLRU {
	if window <= 0 {
		window = config.DefaultSizePurgeWindow
	}
	p := &SizeLRU{table: newTable(capacity), window: window, protected: protected}
	p.q = p.newQueue()
	return p
}

func (p *SizeLRU) Put(e Entry) {
	e.Count = 1
	p.insert(&p.q, e)
	p.purgeBySize()
}

func (p *SizeLRU) Get(key string, ts int64) (uint64, bool) {
	h, s, ok := p.touch(key, ts)
	if !ok {
		return 0, false
	}
	size := s.Size
	p.detach(&p.q, h)
	p.attach(&p.q, h)
	return size, true
}

func (p *SizeLRU) Remove(key string) (uint64, bool) {
	h, ok := p.index[key]
	if !ok {
		return 0, false
	}
	return p.unlink(&p.q, h).Size, true
}

func (p *SizeLRU) Size() uint64 { return p.q.size }

func (p *SizeLRU) HourlyPurge(int64) { p.purgeBySize() }

// PurgeRegular evicts the least recent entry.
func (p *SizeLRU) PurgeRegular() bool {
	h, ok := p.back(&p.q)
	if !ok {
		return false
	}
	p.evict(&p.q, h)
	return true
}

func (p *SizeLRU) purgeBySize() {
	for p.q.size > p.capacity {
		if h, ok := p.largestOld(); ok {
			p.evict(&p.q, h)
			continue
		}
		if !p.PurgeRegular() {
			return
		}
	}
}

// largestOld scans the window least recent unprotected entries, oldest first,
// and returns the largest one. Ties keep the older entry.
func (p *SizeLRU) largestOld() (Handle, bool) {
	var (
		best     = noHandle
		bestSize uint64
		seen     int
	)
	for h, ok := p.back(&p.q); ok && seen < p.window; h, ok = p.newer(&p.q, h) {
		s := p.at(h)
		if p.protected != nil && p.protected.Flagged(s.CustomerID) {
			continue
		}
		seen++
		if best == noHandle || s.Size > bestSize {
			best, bestSize = h, s.Size
		}
	}
	return best, best != noHandle
}

func (p *SizeLRU) Report(ts int64, layer string, sink report.Sink) {
	p.reportQueue(ts, layer, &p.q, sink)
}

func (p *SizeLRU) Name() string { return "size_lru" }
