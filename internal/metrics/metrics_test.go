package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveResponse("single", 206, 5)
	m.ObserveResponse("single", 206, 6)
	m.ObserveResponse("error", 416, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Responses.WithLabelValues("single", "206")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Responses.WithLabelValues("error", "416")))
	assert.Equal(t, 11.0, testutil.ToFloat64(m.BytesServed))

	m.HandleOpened()
	m.HandleOpened()
	m.HandleClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpenHandles))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveResponse("whole", 200, 1)
	m.HandleOpened()
	m.HandleClosed()
}
