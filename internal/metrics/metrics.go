// Package metrics exposes prometheus collectors for the tide service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"go.ngs.io/tidewatch/internal/domain"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency_seconds",
			Subsystem: "tidewatch",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.2, 0.4, 0.8, 1.6},
		},
		[]string{"verb", "path", "code"},
	)

	tablePopulations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "table_populate_total",
			Subsystem: "tidewatch",
			Help:      "Tide table populations by outcome.",
		},
		[]string{"station", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		tablePopulations,
	)
}

// ObserveRequestLatency records one served request.
func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// Recorder counts table populations. Its zero value is ready to use.
type Recorder struct{}

// ObservePopulate implements usecase.PopulateObserver.
func (Recorder) ObservePopulate(station string, outcome domain.PopulateOutcome) {
	tablePopulations.With(prometheus.Labels{
		"station": station,
		"outcome": outcome.String(),
	}).Inc()
}
