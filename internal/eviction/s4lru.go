package eviction

import (
	"strconv"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/report"
)

// S4LRU is a segmented LRU. New entries enter segment 0, every hit moves an
// entry one segment up, and each segment holds at most capacity/segments
// bytes. Overflow is demoted to the head of the segment below; only segment 0
// evicts.
type S4LRU struct {
	table
	queues []queue
	share  uint64
}

func NewS4LRU(capacity uint64, segments int) *S4LRU {
	if segments <= 0 {
		segments = config.DefaultQueues
	}
	p := &S4LRU{
		table:  newTable(capacity),
		queues: make([]queue, segments),
		share:  capacity / uint64(segments),
	}
	for i := range p.queues {
		p.queues[i] = p.newQueue()
	}
	return p
}

func (p *S4LRU) Put(e Entry) {
	e.Count = 1
	e.Queue = 0
	p.insert(&p.queues[0], e)
	p.rebalance()
}

func (p *S4LRU) Get(key string, ts int64) (uint64, bool) {
	h, s, ok := p.touch(key, ts)
	if !ok {
		return 0, false
	}
	size, from := s.Size, s.Queue
	to := min(from+1, len(p.queues)-1)

	p.detach(&p.queues[from], h)
	p.at(h).Queue = to
	p.attach(&p.queues[to], h)
	p.rebalance()
	return size, true
}

func (p *S4LRU) Remove(key string) (uint64, bool) {
	h, ok := p.index[key]
	if !ok {
		return 0, false
	}
	return p.unlink(&p.queues[p.at(h).Queue], h).Size, true
}

func (p *S4LRU) Size() uint64 {
	var total uint64
	for i := range p.queues {
		total += p.queues[i].size
	}
	return total
}

// SegmentCapacity is the byte budget of one segment.
func (p *S4LRU) SegmentCapacity() uint64 { return p.share }

// HourlyPurge is a no-op: segments are rebalanced on every put and get.
func (p *S4LRU) HourlyPurge(int64) {}

// PurgeRegular rebalances the segments; false when the cache is empty.
func (p *S4LRU) PurgeRegular() bool {
	if p.Len() == 0 {
		return false
	}
	p.rebalance()
	return true
}

// rebalance walks from the hottest segment down, demoting tails of
// over-budget segments and evicting the tails of segment 0.
func (p *S4LRU) rebalance() {
	for j := len(p.queues) - 1; j >= 0; j-- {
		q := &p.queues[j]
		for q.size > p.share {
			h, ok := p.back(q)
			if !ok {
				break
			}
			if j == 0 {
				p.evict(q, h)
				continue
			}
			p.detach(q, h)
			p.at(h).Queue = j - 1
			p.attach(&p.queues[j-1], h)
		}
	}
}

func (p *S4LRU) Report(ts int64, layer string, sink report.Sink) {
	sink.Emit(layer, "size", float64(p.Size()))
	sink.Emit(layer, "entries", float64(p.Len()))
	for i := range p.queues {
		sink.Emit(layer, "q"+strconv.Itoa(i)+"_size", float64(p.queues[i].size))
	}
}

func (p *S4LRU) Name() string { return "s4lru" }
