package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridastar"
)

func diagonalGrid(t *testing.T) *gridastar.Grid {
	t.Helper()
	cells := [][]bool{
		{false, false, false},
		{false, false, false},
		{false, false, false},
	}
	grid, err := gridastar.NewGrid(cells, gridastar.Coord{Row: 0, Col: 0}, gridastar.Coord{Row: 2, Col: 2})
	require.NoError(t, err)
	return grid
}

func TestCollectorRecordsSearch(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	require.NoError(t, err)

	result, err := gridastar.Search(context.Background(), diagonalGrid(t), gridastar.WithRecorder(collector))
	require.NoError(t, err)
	require.True(t, result.Found)

	assert.Equal(t, 3.0, testutil.ToFloat64(collector.Steps))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Outcomes.WithLabelValues("succeeded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.Outcomes.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.StalePops))
	// start relaxes 3 neighbors, the center relaxes the 5 it has not seen yet
	assert.Equal(t, 8.0, testutil.ToFloat64(collector.Relaxations))

	var popped dto.Metric
	require.NoError(t, collector.PoppedF.Write(&popped))
	assert.Equal(t, uint64(3), popped.GetHistogram().GetSampleCount())
}

func TestCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	require.NoError(t, err)
	second, err := NewCollector(reg)
	require.NoError(t, err)

	second.Steps.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.Steps))
}

func TestCollectorRejectsIncompatibleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridastar_steps_total",
		Help: "conflicting type",
	}))

	_, err := NewCollector(reg)
	assert.Error(t, err)
}

func TestCollectorRejectsSameDescriptorOfAnotherKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "gridastar_steps_total",
		Help: "Total number of nodes popped from the frontier and processed.",
	}, func() float64 { return 0 }))

	_, err := NewCollector(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gridastar_steps_total already registered with incompatible type")
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	require.NoError(t, err)
	collector.ObserveOutcome(gridastar.Failed, 4)
	collector.ObserveStale(gridastar.Coord{})

	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `gridastar_searches_total{status="failed"} 1`)
	assert.Contains(t, rr.Body.String(), "gridastar_stale_pops_total 1")
}

func TestNilCollectorIsSafe(t *testing.T) {
	var collector *Collector
	collector.ObserveStep(gridastar.Coord{}, 1, 1, 1)
	collector.ObserveStale(gridastar.Coord{})
	collector.ObserveOutcome(gridastar.Succeeded, 1)
}
