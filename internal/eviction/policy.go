// Package eviction holds the eviction policies of a cache layer. Every policy
// keeps a key index and one or more recency queues over a shared slot arena,
// and keeps the sum of resident sizes within capacity after every put and
// every hourly purge.
package eviction

import (
	"fmt"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/report"
)

const secondsPerDay = 60 * 60 * 24

// Entry is one resident object.
type Entry struct {
	Key        string
	CustomerID string
	URL        string
	Line       string
	Size       uint64
	// Timestamp is the last access time.
	Timestamp int64
	Count     uint64
	// Queue is the S4LRU segment holding the entry.
	Queue int
}

// CustomerFlags is a read-only customer lookup; config.CustomerSet implements it.
type CustomerFlags interface {
	Flagged(customerID string) bool
}

type Policy interface {
	// Put inserts a new entry. The key must not be resident.
	Put(e Entry)
	// Get records an access and returns the resident size.
	Get(key string, ts int64) (size uint64, ok bool)
	Check(key string) bool
	// Remove drops an entry without counting it as a purge.
	Remove(key string) (size uint64, ok bool)
	// Size is the sum of resident entry sizes.
	Size() uint64
	Capacity() uint64
	Len() int
	HourlyPurge(ts int64)
	// PurgeRegular evicts by the policy order; false when nothing could be evicted.
	PurgeRegular() bool
	// Purges returns cumulative eviction counts.
	Purges() (items, bytes uint64)
	Report(ts int64, layer string, sink report.Sink)
	Name() string
}

// New builds the policy named by cfg.
func New(cfg *config.EvictionCfg, capacity uint64, customers *config.CustomersCfg) (Policy, error) {
	switch cfg.Policy {
	case config.EvictionLRU:
		return NewLRU(capacity, cfg.PurgeWatermark), nil
	case config.EvictionFIFO:
		return NewFIFO(capacity, cfg.PurgeWatermark), nil
	case config.EvictionS4LRU:
		return NewS4LRU(capacity, cfg.Queues), nil
	case config.EvictionSizeLRU:
		return NewSizeLRU(capacity, cfg.SizePurgeWindow, customers.ProtectedSet), nil
	case config.EvictionCostLRU:
		if !cfg.Cost.Enabled() {
			return nil, fmt.Errorf("cost_lru: %w", config.ErrInvalidOption)
		}
		if f := cfg.Cost.Formula; f < 1 || f > config.MaxCostFormula {
			return nil, fmt.Errorf("cost_lru formula %d: %w", f, config.ErrUnsupportedFormula)
		}
		return NewCostLRU(capacity, *cfg.Cost, customers.BypassSet), nil
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Policy, config.ErrUnknownEviction)
	}
}

// table is the key index shared by every policy.
type table struct {
	arena
	index       map[string]Handle
	capacity    uint64
	purged      uint64
	purgedBytes uint64
}

func newTable(capacity uint64) table {
	return table{index: make(map[string]Handle), capacity: capacity}
}

func (t *table) Check(key string) bool {
	_, ok := t.index[key]
	return ok
}

func (t *table) Capacity() uint64 { return t.capacity }

func (t *table) Len() int { return len(t.index) }

func (t *table) Purges() (items, bytes uint64) { return t.purged, t.purgedBytes }

func (t *table) insert(q *queue, e Entry) Handle {
	if _, ok := t.index[e.Key]; ok {
		panic(fmt.Sprintf("eviction: put of resident key %q", e.Key))
	}
	h := t.alloc(e)
	t.attach(q, h)
	t.index[e.Key] = h
	return h
}

// unlink removes h from q and from the index and returns the released entry.
func (t *table) unlink(q *queue, h Handle) Entry {
	t.detach(q, h)
	e := t.at(h).Entry
	delete(t.index, e.Key)
	t.release(h)
	return e
}

// evict is unlink counted as a purge.
func (t *table) evict(q *queue, h Handle) {
	e := t.unlink(q, h)
	t.purged++
	t.purgedBytes += e.Size
}

// touch records an access on a resident entry.
func (t *table) touch(key string, ts int64) (Handle, *slot, bool) {
	h, ok := t.index[key]
	if !ok {
		return noHandle, nil, false
	}
	s := t.at(h)
	s.Count++
	s.Timestamp = ts
	return h, s, true
}

func (t *table) reportQueue(ts int64, layer string, q *queue, sink report.Sink) {
	sink.Emit(layer, "size", float64(q.size))
	sink.Emit(layer, "entries", float64(q.len))
	if h, ok := t.back(q); ok {
		sink.Emit(layer, "oldest_age_days", float64(ts-t.at(h).Timestamp)/secondsPerDay)
	}
}
