// Package metrics defines Monte Carlo simulation metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Simulation counter vectors
var (
	SimulationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_value",
		Name:      "simulation_runs_total",
		Help:      "Total number of Monte Carlo batches by status",
	}, []string{"status"})
)

// Simulation histograms
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bracket_value",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of Monte Carlo batches in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// RecordSimulationRun records a Monte Carlo batch.
// status should be one of: "success", "failure", "cancelled"
func RecordSimulationRun(status string, durationSeconds float64) {
	SimulationRunsTotal.WithLabelValues(status).Inc()
	SimulationDuration.Observe(durationSeconds)
}
