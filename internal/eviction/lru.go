package eviction

import (
	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/report"
)

// ordered is a single recency queue evicted from its tail.
type ordered struct {
	table
	q         queue
	promote   bool
	watermark float64
	name      string
}

func newOrdered(capacity uint64, watermark float64, promote bool, name string) ordered {
	if watermark <= 0 || watermark > 1 {
		watermark = config.DefaultPurgeWatermark
	}
	o := ordered{table: newTable(capacity), promote: promote, watermark: watermark, name: name}
	o.q = o.newQueue()
	return o
}

func (o *ordered) Put(e Entry) {
	e.Count = 1
	o.insert(&o.q, e)
	for o.q.size > o.capacity && o.PurgeRegular() {
	}
}

func (o *ordered) Get(key string, ts int64) (uint64, bool) {
	h, s, ok := o.touch(key, ts)
	if !ok {
		return 0, false
	}
	size := s.Size
	if o.promote {
		o.detach(&o.q, h)
		o.attach(&o.q, h)
	}
	return size, true
}

func (o *ordered) Remove(key string) (uint64, bool) {
	h, ok := o.index[key]
	if !ok {
		return 0, false
	}
	return o.unlink(&o.q, h).Size, true
}

func (o *ordered) Size() uint64 { return o.q.size }

// HourlyPurge trims the queue to the purge watermark of capacity.
func (o *ordered) HourlyPurge(int64) {
	limit := uint64(float64(o.capacity) * o.watermark)
	for o.q.size > limit && o.PurgeRegular() {
	}
}

func (o *ordered) PurgeRegular() bool {
	h, ok := o.back(&o.q)
	if !ok {
		return false
	}
	o.evict(&o.q, h)
	return true
}

func (o *ordered) Report(ts int64, layer string, sink report.Sink) {
	o.reportQueue(ts, layer, &o.q, sink)
}

func (o *ordered) Name() string { return o.name }

// LRU moves an entry to the head of the queue on every access.
type LRU struct {
	ordered
}

func NewLRU(capacity uint64, watermark float64) *LRU {
	return &LRU{ordered: newOrdered(capacity, watermark, true, "lru")}
}

// FIFO keeps insertion order; accesses only update count and timestamp.
type FIFO struct {
	ordered
}

func NewFIFO(capacity uint64, watermark float64) *FIFO {
	return &FIFO{ordered: newOrdered(capacity, watermark, false, "fifo")}
}
