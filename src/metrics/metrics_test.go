package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/danmuck/procsim/src/sim"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, input string) *Metrics {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Prompt = sim.PromptNever
	s, err := sim.New(cfg, &bytes.Buffer{})
	require.NoError(t, err)

	m := New()
	s.AddObserver(m)
	require.NoError(t, s.Run(strings.NewReader(input)))
	return m
}

func TestCountsScriptedRun(t *testing.T) {
	m := run(t, strings.Join([]string{
		"Proc2 1 2 1",
		"Proc1 0 2 2",
		"nonsense",
		"Proc3 0 7 1",
		"Proc4 1 9 4",
		"Proc2 1 2 1",
		"HALT",
	}, "\n"))

	assert.Equal(t, float64(5), testutil.ToFloat64(m.Commands.WithLabelValues("accepted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Commands.WithLabelValues("rejected")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Deliveries))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Matches))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Blocked.WithLabelValues("3")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Blocked.WithLabelValues("4")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Halts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ChannelDepth))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.PeakDepth))
}

func TestSummarySortedAndLabelled(t *testing.T) {
	m := run(t, "Proc1 0 2 2\nHALT\n")

	samples, err := m.Summary()
	require.NoError(t, err)
	require.NotEmpty(t, samples)

	keys := make([]string, 0, len(samples))
	for _, s := range samples {
		keys = append(keys, s.Key())
	}
	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, `procsim_commands_total{outcome="accepted"}`)
	assert.Contains(t, keys, `procsim_blocked_total{process="1"}`)
	assert.Contains(t, keys, "procsim_halts_total")
}

func TestInstancesAreIndependent(t *testing.T) {
	a := run(t, "Proc1 0 2 2\n")
	b := New()
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Commands.WithLabelValues("accepted")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Commands.WithLabelValues("accepted")))
}
