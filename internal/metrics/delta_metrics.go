// Package metrics defines what-if delta metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values shared by delta and simulation metrics
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Delta counter vectors
var (
	DeltaComputationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_value",
		Name:      "delta_computations_total",
		Help:      "Total number of what-if delta computations by kind and outcome",
	}, []string{"kind", "outcome"})
)

// Delta histogram vectors
var (
	DeltaSwing = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bracket_value",
		Name:      "delta_swing",
		Help:      "Absolute portfolio swing produced by a single perturbation",
		Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
	}, []string{"kind"})
)

// RecordDelta records a delta computation.
// kind should be one of: "team", "game"
// outcome should be one of: OutcomeSuccess, OutcomeFailure
func RecordDelta(kind, outcome string) {
	DeltaComputationsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordDeltaSwing records the absolute portfolio swing of a delta.
func RecordDeltaSwing(kind string, swing float64) {
	if swing < 0 {
		swing = -swing
	}
	DeltaSwing.WithLabelValues(kind).Observe(swing)
}
