package prom

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestAdapter_EmitAndFlush verifies gauges and the report counter.
func TestAdapter_EmitAndFlush(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "ashsim", "sim", prometheus.Labels{"run_id": "test"})

	a.Emit("global", "hit_ratio", 0.25)
	a.Emit("hd", "hits", 3)
	a.Emit("hd", "hits", 5)
	require.NoError(t, a.Flush(900))

	require.Equal(t, 0.25, testutil.ToFloat64(a.values.WithLabelValues("global", "hit_ratio")))
	require.Equal(t, 5.0, testutil.ToFloat64(a.values.WithLabelValues("hd", "hits")))
	require.Equal(t, 1.0, testutil.ToFloat64(a.reports))
	require.Equal(t, 900.0, testutil.ToFloat64(a.traceTS))
	require.Equal(t, 2, testutil.CollectAndCount(a.values))

	expected := `
# HELP ashsim_sim_reports_total Emitted reports
# TYPE ashsim_sim_reports_total counter
ashsim_sim_reports_total{run_id="test"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ashsim_sim_reports_total"))
}

// TestNew_DuplicateRegistrationPanics verifies MustRegister semantics.
func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "ashsim", "sim", nil)
	require.Panics(t, func() { New(reg, "ashsim", "sim", nil) })
}
