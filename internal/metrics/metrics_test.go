package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"go.ngs.io/tidewatch/internal/domain"
)

func TestRecorder_ObservePopulate(t *testing.T) {
	var r Recorder
	counter := tablePopulations.WithLabelValues("Test Station", "shift_forward")
	before := testutil.ToFloat64(counter)

	r.ObservePopulate("Test Station", domain.ShiftForward)
	r.ObservePopulate("Test Station", domain.ShiftForward)
	r.ObservePopulate("Test Station", domain.CacheHit)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("expected 2 forward shifts, got %v", got)
	}
	if got := testutil.ToFloat64(tablePopulations.WithLabelValues("Test Station", "cache_hit")); got < 1 {
		t.Errorf("expected a cache hit, got %v", got)
	}
}

func TestObserveRequestLatency(t *testing.T) {
	ObserveRequestLatency("GET", "/metrics-test", "200", 0.01)
	ObserveRequestLatency("GET", "/metrics-test", "200", 0.3)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "tidewatch_request_latency_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "path" && l.GetValue() == "/metrics-test" {
					if got := m.GetHistogram().GetSampleCount(); got != 2 {
						t.Errorf("expected 2 observations, got %d", got)
					}
					return
				}
			}
		}
	}
	t.Error("latency series not registered")
}
