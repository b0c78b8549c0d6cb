package eviction

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/report"
)

// CostLRU keeps LRU order but evicts in batches ranked by a score combining
// age and size. The size score is relative to running moments of log2(size).
type CostLRU struct {
	table
	q         queue
	cfg       config.CostCfg
	customers CustomerFlags

	mean     float64
	variance float64

	hours            int
	evictedLastCycle uint64
	ranked           []scored
}

type scored struct {
	h     Handle
	ts    int64
	score float64
}

func NewCostLRU(capacity uint64, cfg config.CostCfg, customers CustomerFlags) *CostLRU {
	if cfg.Formula < 1 || cfg.Formula > config.MaxCostFormula {
		panic(fmt.Sprintf("eviction: unsupported cost formula %d", cfg.Formula))
	}
	if cfg.Deviations <= 0 {
		cfg.Deviations = config.DefaultDeviations
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = config.DefaultAlpha
	}
	if cfg.LRUInterval <= 0 {
		cfg.LRUInterval = config.DefaultLRUInterval
	}
	p := &CostLRU{table: newTable(capacity), cfg: cfg, customers: customers}
	p.q = p.newQueue()
	return p
}

func (p *CostLRU) Put(e Entry) {
	e.Count = 1
	p.insert(&p.q, e)
	p.observe(e.Size)
	if p.q.size > p.capacity {
		p.sweep()
	}
}

func (p *CostLRU) Get(key string, ts int64) (uint64, bool) {
	h, s, ok := p.touch(key, ts)
	if !ok {
		return 0, false
	}
	size := s.Size
	p.detach(&p.q, h)
	p.attach(&p.q, h)
	p.observe(size)
	return size, true
}

func (p *CostLRU) Remove(key string) (uint64, bool) {
	h, ok := p.index[key]
	if !ok {
		return 0, false
	}
	return p.unlink(&p.q, h).Size, true
}

func (p *CostLRU) Size() uint64 { return p.q.size }

// HourlyPurge advances the purge-hour counter and runs a ranked sweep.
func (p *CostLRU) HourlyPurge(int64) {
	p.hours++
	p.sweep()
}

// PurgeRegular evicts the least recent entry.
func (p *CostLRU) PurgeRegular() bool {
	h, ok := p.back(&p.q)
	if !ok {
		return false
	}
	p.evict(&p.q, h)
	return true
}

// Moments returns the running mean and variance of log2(size).
func (p *CostLRU) Moments() (mean, variance float64) {
	return p.mean, p.variance
}

func (p *CostLRU) observe(size uint64) {
	x := log2(size)
	a := p.cfg.Alpha
	p.mean = a*x + (1-a)*p.mean
	d := x - p.mean
	p.variance = a*d*d + (1-a)*p.variance
}

// sweep scores every resident entry and evicts from the highest score
// down while the cache is over capacity.
func (p *CostLRU) sweep() {
	p.evictedLastCycle = 0
	if p.q.size <= p.capacity {
		return
	}

	p.ranked = p.scores(p.ranked[:0])
	slices.SortStableFunc(p.ranked, func(a, b scored) int {
		if c := cmp.Compare(a.score, b.score); c != 0 {
			return c
		}
		// equal scores: the older entry ranks higher
		return cmp.Compare(b.ts, a.ts)
	})

	for i := len(p.ranked) - 1; i >= 0 && p.q.size > p.capacity; i-- {
		p.evict(&p.q, p.ranked[i].h)
		p.evictedLastCycle++
	}
}

func (p *CostLRU) scores(dst []scored) []scored {
	newestH, ok := p.front(&p.q)
	if !ok {
		return dst
	}
	oldestH, _ := p.back(&p.q)
	newest, oldest := p.at(newestH).Timestamp, p.at(oldestH).Timestamp
	span := float64(newest - oldest)

	sigma := math.Sqrt(p.variance)
	upper := p.mean + p.cfg.Deviations*sigma
	lower := p.mean - p.cfg.Deviations*sigma

	for h, ok := oldestH, true; ok; h, ok = p.newer(&p.q, h) {
		s := p.at(h)

		var sizeScore float64
		switch x := log2(s.Size); {
		case x >= upper:
			sizeScore = 1
		case x <= lower:
			sizeScore = 0
		default:
			sizeScore = 0.5 + (x-p.mean)/(2*p.cfg.Deviations*sigma)
		}
		if sizeScore < 0 || sizeScore > 1 || math.IsNaN(sizeScore) {
			panic(fmt.Sprintf("eviction: size score %v of %q outside [0,1] (mean %v, variance %v)", sizeScore, s.Key, p.mean, p.variance))
		}

		age := float64(newest - s.Timestamp)
		var ageScore float64
		if span > 0 {
			ageScore = age / span
		}
		if ageScore < 0 || ageScore > 1 {
			panic(fmt.Sprintf("eviction: age score %v of %q outside [0,1]", ageScore, s.Key))
		}

		dst = append(dst, scored{h: h, ts: s.Timestamp, score: p.score(s, age, span, ageScore, sizeScore)})
	}
	return dst
}

func (p *CostLRU) score(s *slot, age, span, ageScore, sizeScore float64) float64 {
	c := &p.cfg
	linear := ageScore*c.WAge + sizeScore*c.WSize
	switch c.Formula {
	case 1:
		return linear
	case 2:
		m := 0.5
		if p.customers != nil && p.customers.Flagged(s.CustomerID) {
			m = 1
		}
		return linear * m
	case 3:
		return age * (sizeScore * c.WSize)
	case 4:
		return math.Pow(age, c.Y) * (sizeScore*c.WSize + c.E)
	case 5:
		return math.Pow(age, c.Y) * (sizeScore*c.WSize + age)
	case 6:
		return math.Pow(age, c.Y) + sizeScore*c.WSize*age
	case 7:
		return math.Pow(age, c.Y) * (sizeScore*c.WSize*span + c.E)
	case 8:
		if p.hours%c.LRUInterval == 0 {
			return ageScore
		}
		return linear
	default:
		panic(fmt.Sprintf("eviction: unsupported cost formula %d", c.Formula))
	}
}

func (p *CostLRU) Report(ts int64, layer string, sink report.Sink) {
	p.reportQueue(ts, layer, &p.q, sink)
	sink.Emit(layer, "hour_count", float64(p.hours))
	sink.Emit(layer, "evicted_last_cycle", float64(p.evictedLastCycle))
}

func (p *CostLRU) Name() string { return "cost_lru" }

// log2 treats a zero size as one byte.
func log2(size uint64) float64 {
	return math.Log2(float64(max(size, 1)))
}
