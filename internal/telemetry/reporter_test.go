package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/cache"
	"github.com/Borislavv/go-ash-sim/internal/evictor"
	"github.com/Borislavv/go-ash-sim/internal/help"
	"github.com/Borislavv/go-ash-sim/internal/shared/random"
	"github.com/Borislavv/go-ash-sim/model"
	"github.com/stretchr/testify/require"
)

type cycle struct {
	ts     int64
	values map[string]map[string]float64
}

type recordingSink struct {
	cur    map[string]map[string]float64
	cycles []cycle
}

func (s *recordingSink) Emit(layer, metric string, value float64) {
	if s.cur == nil {
		s.cur = make(map[string]map[string]float64)
	}
	if s.cur[layer] == nil {
		s.cur[layer] = make(map[string]float64)
	}
	s.cur[layer][metric] = value
}

func (s *recordingSink) Flush(ts int64) error {
	s.cycles = append(s.cycles, cycle{ts: ts, values: s.cur})
	s.cur = nil
	return nil
}

func newReporter(t *testing.T, cfg *config.Sim, sink *recordingSink) (*cache.Chain, *Reporter) {
	t.Helper()
	chain, err := cache.NewChain(cfg, random.New(cfg.Seed), help.SilentLogger())
	require.NoError(t, err)
	return chain, New(cfg, help.SilentLogger(), chain, evictor.NoOpEvictor{}, sink)
}

func replay(chain *cache.Chain, r *Reporter, evs ...model.Event) {
	for i := range evs {
		chain.Process(&evs[i])
		r.Observe(&evs[i])
	}
}

func ev(ts int64, key string, size uint64) model.Event {
	return model.Event{Timestamp: ts, CacheKey: key, Size: size, BytesOut: size}
}

// TestReporter_Ratios verifies global, ideal and per-layer values of one cycle.
func TestReporter_Ratios(t *testing.T) {
	sink := &recordingSink{}
	chain, r := newReporter(t, help.Cfg(1000), sink)

	replay(chain, r, ev(0, "A", 100), ev(1, "A", 100), ev(2, "B", 50))
	r.Report(2)

	require.Len(t, sink.cycles, 1)
	c := sink.cycles[0]
	require.Equal(t, int64(2), c.ts)

	g := c.values["global"]
	require.InDelta(t, 1.0/3, g["hit_ratio"], 1e-9)
	require.InDelta(t, 0.4, g["byte_hit_ratio"], 1e-9)
	require.InDelta(t, 1.0/3, g["ideal_hit_ratio"], 1e-9)
	require.InDelta(t, 0.4, g["ideal_byte_hit_ratio"], 1e-9)
	require.Equal(t, 3.0, g["requests"])
	require.Equal(t, 250.0, g["traffic_bytes"])
	require.Equal(t, 2.0, g["unique_keys"])

	hd := c.values["hd"]
	require.Equal(t, 1.0, hd["hits"])
	require.Equal(t, 2.0, hd["misses"])
	require.Equal(t, 100.0, hd["byte_hits"])
	require.Equal(t, 150.0, hd["byte_misses"])
	require.Equal(t, 150.0, hd["origin_reads"])
	require.Equal(t, 2.0, hd["disk_writes"])
	require.Equal(t, 150.0, hd["size"])
	require.Equal(t, 2.0, hd["entries"])
	require.InDelta(t, 1.0/3, hd["hit_rate"], 1e-9)
}

// TestReporter_CyclesAreDeltas verifies a report only covers its own interval.
func TestReporter_CyclesAreDeltas(t *testing.T) {
	sink := &recordingSink{}
	chain, r := newReporter(t, help.Cfg(1000), sink)

	replay(chain, r, ev(0, "A", 100), ev(1, "A", 100))
	r.Report(1)
	r.Report(1)

	require.Len(t, sink.cycles, 2)
	second := sink.cycles[1].values
	require.Zero(t, second["hd"]["hits"])
	require.Zero(t, second["hd"]["misses"])
	require.Zero(t, second["global"]["hit_ratio"])
	require.Zero(t, second["global"]["requests"])
	require.Equal(t, 100.0, second["hd"]["size"], "gauges are not deltas")
}

// TestReporter_PeriodicOnTraceTime verifies reports fire once the interval is exceeded.
func TestReporter_PeriodicOnTraceTime(t *testing.T) {
	sink := &recordingSink{}
	cfg := help.Cfg(1000)
	cfg.Reporting = &config.ReportingCfg{Interval: 900}
	chain, r := newReporter(t, cfg, sink)

	replay(chain, r, ev(100, "A", 10), ev(1000, "B", 10))
	require.Zero(t, r.Reports())

	replay(chain, r, ev(1001, "A", 10))
	require.Equal(t, uint64(1), r.Reports())
	require.Equal(t, int64(1001), sink.cycles[0].ts)
	require.Equal(t, 3.0, sink.cycles[0].values["global"]["requests"])

	replay(chain, r, ev(1500, "C", 10))
	require.Equal(t, uint64(1), r.Reports())
	require.Equal(t, 3, r.Ideal().Keys)
}

// TestReporter_NoPeriodicWithoutConfig verifies only forced reports are emitted.
func TestReporter_NoPeriodicWithoutConfig(t *testing.T) {
	sink := &recordingSink{}
	chain, r := newReporter(t, help.Cfg(1000), sink)

	replay(chain, r, ev(0, "A", 10), ev(100_000, "B", 10))
	require.Zero(t, r.Reports())
	require.Empty(t, sink.cycles)
}

// TestReporter_TwoTierHitRatio verifies the global ratio counts hits of every layer.
func TestReporter_TwoTierHitRatio(t *testing.T) {
	sink := &recordingSink{}
	cfg := help.TwoTierCfg(1000, 10_000, "")
	cfg.Reporting.IsLogsEnabled = false
	chain, r := newReporter(t, cfg, sink)

	// A: ram fill + hd refusal, A: ram hit, A: ram hit
	replay(chain, r, ev(0, "A", 100), ev(1, "A", 100), ev(2, "A", 100))
	r.Report(2)

	c := sink.cycles[0].values
	require.InDelta(t, 2.0/3, c["global"]["hit_ratio"], 1e-9)
	require.Equal(t, 2.0, c["ram"]["hits"])
	require.Equal(t, 1.0, c["hd"]["refused"])
	require.Contains(t, c["hd"], "bloom_set_bits")
	require.Contains(t, c["ram"], "q0_size")
}

// TestLogs_OneRecordPerLayer verifies the structured log sink.
func TestLogs_OneRecordPerLayer(t *testing.T) {
	var buf bytes.Buffer
	logs := NewLogs(slog.New(slog.NewJSONHandler(&buf, nil)))

	logs.Emit("global", "hit_ratio", 0.5)
	logs.Emit("hd", "hits", 3)
	logs.Emit("hd", "misses", 1)
	require.NoError(t, logs.Flush(900))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	require.Equal(t, "report", rec["msg"])
	require.Equal(t, "hd", rec["layer"])
	require.Equal(t, 900.0, rec["ts"])
	require.Equal(t, 3.0, rec["hits"])
	require.Equal(t, 1.0, rec["misses"])

	buf.Reset()
	require.NoError(t, logs.Flush(1800))
	require.Empty(t, buf.String())
}

// TestDeltaSnapshot_Reset verifies a counter reset yields the current value.
func TestDeltaSnapshot_Reset(t *testing.T) {
	prev := snapshot{layers: []cache.Stats{{Hits: 10, Size: 5}}, purgeScans: 4}
	cur := snapshot{layers: []cache.Stats{{Hits: 3, Size: 7}, {Hits: 2}}, purgeScans: 6}

	d := deltaSnapshot(prev, cur)
	require.Equal(t, uint64(3), d.layers[0].Hits)
	require.Equal(t, uint64(7), d.layers[0].Size)
	require.Equal(t, uint64(2), d.layers[1].Hits)
	require.Equal(t, uint64(2), d.purgeScans)
}
