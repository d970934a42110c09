package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTransitionMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTransitionMetrics(reg)

	m.IncSuccess("submit")
	m.IncSuccess("submit")
	m.IncFailure("Start Billing")
	m.IncCascadeWarning()
	m.ObserveDuration("submit", 50*time.Millisecond)

	if got := testutil.ToFloat64(m.success.WithLabelValues("submit")); got != 2 {
		t.Fatalf("expected 2 submit successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("start_billing")); got != 1 {
		t.Fatalf("expected label normalization, got %v", got)
	}
	if got := testutil.ToFloat64(m.warnings); got != 1 {
		t.Fatalf("expected 1 cascade warning, got %v", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *TransitionMetrics
	m.IncSuccess("submit")
	m.IncFailure("submit")
	m.IncCascadeWarning()
	m.ObserveDuration("submit", time.Second)

	empty := NewTransitionMetrics(nil)
	empty.IncSuccess("submit")
}
