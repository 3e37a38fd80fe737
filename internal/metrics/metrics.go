// Package metrics exports search progress as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdrpinto/gridastar"
)

// Collector bundles the search metrics and implements gridastar.Recorder.
type Collector struct {
	gatherer prometheus.Gatherer

	Steps           prometheus.Counter
	StalePops       prometheus.Counter
	Relaxations     prometheus.Counter
	Outcomes        *prometheus.CounterVec
	FrontierEntries prometheus.Gauge
	PoppedF         prometheus.Histogram
}

var _ gridastar.Recorder = (*Collector)(nil)

// NewCollector registers the search metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice against the same
// registry returns collectors backed by the existing metrics.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridastar_steps_total",
		Help: "Total number of nodes popped from the frontier and processed.",
	}), "gridastar_steps_total")
	if err != nil {
		return nil, err
	}
	stale, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridastar_stale_pops_total",
		Help: "Total number of outdated frontier entries skipped at pop time.",
	}), "gridastar_stale_pops_total")
	if err != nil {
		return nil, err
	}
	relaxations, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gridastar_relaxations_total",
		Help: "Total number of neighbor cost updates pushed to the frontier.",
	}), "gridastar_relaxations_total")
	if err != nil {
		return nil, err
	}
	outcomes, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridastar_searches_total",
		Help: "Finished searches, labeled by terminal status.",
	}, []string{"status"}), "gridastar_searches_total")
	if err != nil {
		return nil, err
	}
	frontier, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gridastar_frontier_entries",
		Help: "Frontier entries after the latest step, stale entries included.",
	}), "gridastar_frontier_entries")
	if err != nil {
		return nil, err
	}
	poppedF, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridastar_popped_f",
		Help:    "Priority (g+h) of the nodes popped from the frontier.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}), "gridastar_popped_f")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:        gatherer,
		Steps:           steps,
		StalePops:       stale,
		Relaxations:     relaxations,
		Outcomes:        outcomes,
		FrontierEntries: frontier,
		PoppedF:         poppedF,
	}, nil
}

// ObserveStep implements gridastar.Recorder.
func (c *Collector) ObserveStep(_ gridastar.Coord, f float64, relaxed int, frontier int) {
	if c == nil {
		return
	}
	c.Steps.Inc()
	c.Relaxations.Add(float64(relaxed))
	c.FrontierEntries.Set(float64(frontier))
	c.PoppedF.Observe(f)
}

// ObserveStale implements gridastar.Recorder.
func (c *Collector) ObserveStale(gridastar.Coord) {
	if c == nil {
		return
	}
	c.StalePops.Inc()
}

// ObserveOutcome implements gridastar.Recorder.
func (c *Collector) ObserveOutcome(status gridastar.Status, _ int) {
	if c == nil {
		return
	}
	c.Outcomes.WithLabelValues(status.String()).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return collector, nil
}
