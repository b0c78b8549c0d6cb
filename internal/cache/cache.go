package cache

import (
	"log/slog"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/admission"
	"github.com/Borislavv/go-ash-sim/internal/eviction"
	"github.com/Borislavv/go-ash-sim/internal/shared/bytes"
	"github.com/Borislavv/go-ash-sim/internal/shared/random"
	"github.com/Borislavv/go-ash-sim/model"
)

const urlNotStored = "NA"

// Layer is one cache of the chain. A miss is forwarded to the next layer,
// and the object is stored here only when the lower path delivered it and
// the admission policy agrees.
type Layer struct {
	cfg       *config.LayerCfg
	logger    *slog.Logger
	admission admission.Policy
	eviction  eviction.Policy
	next      *Layer
	counters  *counters
}

func NewLayer(cfg *config.LayerCfg, customers *config.CustomersCfg, rnd *random.Source, logger *slog.Logger) (*Layer, error) {
	adm, err := admission.New(&cfg.Admission, customers, rnd)
	if err != nil {
		return nil, err
	}
	evc, err := eviction.New(&cfg.Eviction, cfg.CapacityBytes, customers)
	if err != nil {
		return nil, err
	}

	logger.Info("cache layer is ready",
		"layer", cfg.Name,
		"capacity", bytes.FmtMem(cfg.CapacityBytes),
		"admission", adm.Name(),
		"eviction", evc.Name(),
		"hourly_purging", cfg.IsHourlyPurging,
	)

	return &Layer{
		cfg:       cfg,
		logger:    logger,
		admission: adm,
		eviction:  evc,
		counters:  newCounters(),
	}, nil
}

// Process serves ev and reports whether this layer ends up holding the object
// (a hit here, or a successful add after the lower path delivered it).
func (l *Layer) Process(ev *model.Event) bool {
	if l.lookup(ev) {
		l.counters.hits.Add(1)
		l.counters.byteHits.Add(ev.Size)
		return true
	}

	l.counters.misses.Add(1)
	l.counters.byteMisses.Add(ev.Size)

	if l.next != nil {
		if !l.next.Process(ev) && l.cfg.RespectLowerAdmission {
			return false
		}
		return l.Add(ev)
	}

	l.counters.originReads.Add(ev.Size)
	return l.Add(ev)
}

// Check reports residency without recording an access.
func (l *Layer) Check(key string) bool {
	return l.eviction.Check(key)
}

// Add asks admission and stores the object. The key must not be resident.
func (l *Layer) Add(ev *model.Event) bool {
	if !l.admission.Check(ev.CacheKey, ev.BytesOut, ev.Size, ev.Timestamp, ev.CustomerID) {
		l.counters.refused.Add(1)
		return false
	}
	l.counters.admitted.Add(1)

	e := eviction.Entry{
		Key:        ev.CacheKey,
		CustomerID: ev.CustomerID,
		URL:        urlNotStored,
		Size:       ev.Size,
		Timestamp:  ev.Timestamp,
	}
	if l.cfg.StoreAccessLine {
		e.URL, e.Line = ev.URL, ev.Line
	}
	l.eviction.Put(e)
	l.counters.diskWrites.Add(bytes.Blocks(ev.Size))
	return true
}

// HourlyPurge runs the eviction hourly purge when the layer enables it.
func (l *Layer) HourlyPurge(ts int64) bool {
	if !l.cfg.IsHourlyPurging {
		return false
	}
	l.eviction.HourlyPurge(ts)
	return true
}

// Flush persists admission state when the policy has any.
func (l *Layer) Flush() error {
	if f, ok := l.admission.(admission.Flusher); ok {
		return f.Flush()
	}
	return nil
}

func (l *Layer) Stats() Stats {
	st := l.counters.snapshot()
	st.Purges, st.PurgedBytes = l.eviction.Purges()
	st.Size = l.eviction.Size()
	st.Capacity = l.eviction.Capacity()
	st.Entries = l.eviction.Len()
	return st
}

// HitTotal counts hits of this layer and every layer below it.
func (l *Layer) HitTotal() uint64 {
	var total uint64
	for cur := l; cur != nil; cur = cur.next {
		total += cur.counters.hits.Load()
	}
	return total
}

// HitBytesTotal counts hit bytes of this layer and every layer below it.
func (l *Layer) HitBytesTotal() uint64 {
	var total uint64
	for cur := l; cur != nil; cur = cur.next {
		total += cur.counters.byteHits.Load()
	}
	return total
}

// OriginReadsTotal returns the origin bytes read by the last layer.
func (l *Layer) OriginReadsTotal() uint64 {
	cur := l
	for cur.next != nil {
		cur = cur.next
	}
	return cur.counters.originReads.Load()
}

func (l *Layer) Name() string                { return l.cfg.Name }
func (l *Layer) Next() *Layer                { return l.next }
func (l *Layer) Admission() admission.Policy { return l.admission }
func (l *Layer) Eviction() eviction.Policy   { return l.eviction }
func (l *Layer) Config() *config.LayerCfg    { return l.cfg }

func (l *Layer) lookup(ev *model.Event) bool {
	size, ok := l.eviction.Get(ev.CacheKey, ev.Timestamp)
	if ok {
		l.counters.diskReads.Add(bytes.Blocks(size))
	}
	return ok
}
