package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransitionMetrics records contract-payment transition outcomes.
type TransitionMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	warnings prometheus.Counter
}

// NewTransitionMetrics registers the transition metrics on the provided registerer.
func NewTransitionMetrics(reg prometheus.Registerer) *TransitionMetrics {
	if reg == nil {
		return &TransitionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contract_transition_duration_seconds",
		Help:    "Duration of contract payment transitions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"transition"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_transition_success",
		Help: "Successful contract payment transitions.",
	}, []string{"transition"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_transition_failure",
		Help: "Failed contract payment transitions.",
	}, []string{"transition"})
	warnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contract_cascade_warnings",
		Help: "Best-effort cascade steps that failed without failing the primary operation.",
	})
	reg.MustRegister(duration, success, failure, warnings)
	return &TransitionMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		warnings: warnings,
	}
}

// ObserveDuration records the duration for the named transition.
func (m *TransitionMetrics) ObserveDuration(transition string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(transition)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named transition.
func (m *TransitionMetrics) IncSuccess(transition string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(transition)).Inc()
}

// IncFailure increments the failure counter for the named transition.
func (m *TransitionMetrics) IncFailure(transition string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(transition)).Inc()
}

// IncCascadeWarning counts a swallowed partner-side cleanup failure.
func (m *TransitionMetrics) IncCascadeWarning() {
	if m == nil || m.warnings == nil {
		return
	}
	m.warnings.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
