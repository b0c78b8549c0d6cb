package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/help"
	"github.com/Borislavv/go-ash-sim/internal/shared/random"
	"github.com/Borislavv/go-ash-sim/model"
	"github.com/stretchr/testify/require"
)

func ev(ts int64, key string, size uint64) *model.Event {
	return &model.Event{Timestamp: ts, CacheKey: key, Size: size, BytesOut: size, CustomerID: "CUST", URL: "/" + key}
}

func newChain(t *testing.T, cfg *config.Sim) *Chain {
	t.Helper()
	require.NoError(t, cfg.Validate())
	c, err := NewChain(cfg, random.New(cfg.Seed), help.Logger())
	require.NoError(t, err)
	return c
}

// TestLayer_MissHitMiss replays A(100), A(100), B(50) through one null-admission layer.
func TestLayer_MissHitMiss(t *testing.T) {
	c := newChain(t, help.Cfg(1000))
	hd := c.Head()

	require.False(t, hd.Check("A"))
	require.True(t, c.Process(ev(0, "A", 100)))
	require.True(t, hd.Check("A"))

	before := hd.Stats()
	require.True(t, c.Process(ev(1, "A", 100)))
	require.Equal(t, before.Hits+1, hd.Stats().Hits)

	require.True(t, c.Process(ev(2, "B", 50)))

	st := hd.Stats()
	require.Equal(t, uint64(1), st.Hits)
	require.Equal(t, uint64(2), st.Misses)
	require.Equal(t, uint64(100), st.ByteHits)
	require.Equal(t, uint64(150), st.ByteMisses)
	require.Equal(t, uint64(150), st.OriginReads)
	require.Equal(t, uint64(150), st.Size)
	require.Equal(t, 2, st.Entries)
	require.Equal(t, uint64(1000), st.Capacity)
	require.Equal(t, uint64(2), st.Admitted)
	// one 512-byte block per access for objects below 512 bytes
	require.Equal(t, uint64(1), st.DiskReads)
	require.Equal(t, uint64(2), st.DiskWrites)
}

// TestChain_LowerRefusalStillFillsUpper verifies the default forwarding rule.
func TestChain_LowerRefusalStillFillsUpper(t *testing.T) {
	cfg := help.TwoTierCfg(1000, 10_000, "")
	c := newChain(t, cfg)
	ram, hd := c.Layers()[0], c.Layers()[1]
	require.Same(t, hd, ram.Next())
	require.Nil(t, hd.Next())

	require.True(t, c.Process(ev(0, "A", 100)))
	require.True(t, ram.Check("A"))
	require.False(t, hd.Check("A"), "second-hit refuses on first sight")
	require.Equal(t, uint64(1), hd.Stats().Refused)
	require.Equal(t, uint64(100), ram.OriginReadsTotal())
	require.Zero(t, ram.Stats().OriginReads, "origin reads are charged to the last layer")
}

// TestChain_RespectLowerAdmission verifies the upper layer follows a lower refusal.
func TestChain_RespectLowerAdmission(t *testing.T) {
	cfg := help.TwoTierCfg(1000, 10_000, "")
	cfg.Layers[0].RespectLowerAdmission = true
	c := newChain(t, cfg)
	ram, hd := c.Layers()[0], c.Layers()[1]

	require.False(t, c.Process(ev(0, "A", 100)))
	require.False(t, ram.Check("A"))
	require.False(t, hd.Check("A"))

	// the second request passes the filter, both layers store the object
	require.True(t, c.Process(ev(1, "A", 100)))
	require.True(t, ram.Check("A"))
	require.True(t, hd.Check("A"))

	// a hit in the upper layer never reaches the lower one
	require.True(t, c.Process(ev(2, "A", 100)))
	require.Equal(t, uint64(1), ram.Stats().Hits)
	require.Zero(t, hd.Stats().Hits)
	require.Equal(t, uint64(1), ram.HitTotal())
	require.Equal(t, uint64(100), ram.HitBytesTotal())
}

// TestChain_HitTotalsWalkDown verifies chain-wide totals include lower layers.
func TestChain_HitTotalsWalkDown(t *testing.T) {
	cfg := help.TwoTierCfg(150, 10_000, "")
	cfg.Customers.BypassSet = config.NewCustomerSet("CUST")
	c := newChain(t, cfg)
	ram, hd := c.Layers()[0], c.Layers()[1]

	c.Process(ev(0, "A", 100))
	c.Process(ev(1, "B", 100))
	require.False(t, ram.Check("A"), "an object larger than the 75-byte segment is evicted at once")
	require.True(t, hd.Check("A"))

	c.Process(ev(2, "A", 100))
	require.Equal(t, uint64(1), hd.Stats().Hits)
	require.Equal(t, uint64(1), ram.HitTotal())
	require.Equal(t, uint64(100), ram.HitBytesTotal())
	require.Equal(t, uint64(200), ram.OriginReadsTotal())
}

// TestLayer_HourlyPurgeAndFlush verifies the per-layer switches.
func TestLayer_HourlyPurgeAndFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hd.bf")
	c := newChain(t, help.TwoTierCfg(1000, 10_000, path))
	ram, hd := c.Layers()[0], c.Layers()[1]

	require.False(t, ram.HourlyPurge(3600))
	require.True(t, hd.HourlyPurge(3600))

	c.Process(ev(0, "A", 100))
	require.NoError(t, c.Flush())
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.Equal(t, "second_hit", hd.Admission().Name())
	require.Equal(t, "lru", hd.Eviction().Name())
	require.Equal(t, "hd", hd.Name())
	require.Same(t, c.Head(), ram)
	require.Equal(t, uint64(10_000), hd.Config().CapacityBytes)
}

// TestNewChain_Errors verifies construction failures.
func TestNewChain_Errors(t *testing.T) {
	_, err := NewChain(&config.Sim{}, random.New(1), help.Logger())
	require.ErrorIs(t, err, config.ErrNoLayers)

	cfg := help.Cfg(100)
	cfg.Layers[0].Eviction.Policy = "arc"
	_, err = NewChain(cfg, random.New(1), help.Logger())
	require.ErrorIs(t, err, config.ErrUnknownEviction)
}
