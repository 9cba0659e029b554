package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the export collectors
type Metrics struct {
	Exports     *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	Degrades    prometheus.Counter
	Duration    *prometheus.HistogramVec
	InFlight    prometheus.Gauge
	Released    *prometheus.CounterVec
}

// NewMetrics registers the export collectors on reg. A nil registerer gets
// a private registry, which keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdoc",
			Subsystem: "export",
			Name:      "requests_total",
			Help:      "Export requests by type, final strategy and status.",
		}, []string{"type", "strategy", "status"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdoc",
			Subsystem: "export",
			Name:      "transitions_total",
			Help:      "Export state machine transitions.",
		}, []string{"from", "to"}),
		Degrades: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "salesdoc",
			Subsystem: "export",
			Name:      "degrades_total",
			Help:      "Times the file renderer was marked unavailable.",
		}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salesdoc",
			Subsystem: "export",
			Name:      "strategy_duration_seconds",
			Help:      "Time spent in each strategy attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy", "outcome"}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "salesdoc",
			Subsystem: "export",
			Name:      "in_flight",
			Help:      "Exports currently generating.",
		}),
		Released: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesdoc",
			Subsystem: "export",
			Name:      "handles_released_total",
			Help:      "Stored artifact handles released, by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveRelease counts a released handle. It matches the blob store
// releaser's OnRelease hook.
func (m *Metrics) ObserveRelease(_ string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Released.WithLabelValues(outcome).Inc()
}
