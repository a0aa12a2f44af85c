package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticPendingCounter struct {
	counts map[string]int
	err    error
}

func (s staticPendingCounter) CountPending(ctx context.Context) (map[string]int, error) {
	return s.counts, s.err
}

func TestPendingCollector_Collect(t *testing.T) {
	collector := NewPendingCollector(staticPendingCounter{
		counts: map[string]int{
			"dependents": 3,
			"identity":   1,
		},
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	metrics, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, metrics, 1)

	metric := metrics[0]
	assert.Equal(t, "eraser_pending_erasures", metric.GetName())
	assert.Equal(t, "Number of erasures that started but did not finish", metric.GetHelp())

	metricMap := make(map[string]float64)
	for _, m := range metric.GetMetric() {
		require.Len(t, m.GetLabel(), 1)
		metricMap[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
	}

	assert.Equal(t, 3.0, metricMap["dependents"])
	assert.Equal(t, 1.0, metricMap["identity"])
}

func TestPendingCollector_Collect_Empty(t *testing.T) {
	collector := NewPendingCollector(staticPendingCounter{counts: map[string]int{}})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	metrics, err := registry.Gather()
	require.NoError(t, err)
	require.Empty(t, metrics)
}

func TestPendingCollector_Collect_Error(t *testing.T) {
	collector := NewPendingCollector(staticPendingCounter{err: errors.New("redis down")})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	_, err := registry.Gather()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestPendingCollector_Describe(t *testing.T) {
	collector := NewPendingCollector(staticPendingCounter{})

	ch := make(chan *prometheus.Desc, 1)
	collector.Describe(ch)
	close(ch)

	desc := <-ch
	require.NotNil(t, desc)
	assert.Contains(t, desc.String(), "eraser_pending_erasures")
}
