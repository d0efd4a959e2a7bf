// Package metrics provides centralized Prometheus metrics registry for bracket valuation runs.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PropagationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_value",
		Name:      "propagations_total",
		Help:      "Total number of bracket propagations by mode",
	}, []string{"mode"})
	OverridesConsultedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bracket_value",
		Name:      "overrides_consulted_total",
		Help:      "Total number of matchup lookups answered by an override",
	})
	WinProbabilityCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_value",
		Name:      "win_probability_cache_total",
		Help:      "Rating-derived win probability lookups by cache result",
	}, []string{"result"})
	MissingPositionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bracket_value",
		Name:      "missing_positions_total",
		Help:      "Portfolio positions whose team could not be matched to a score",
	})
)

// Gauge metrics
var (
	PortfolioValue = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bracket_value",
		Name:      "portfolio_value",
		Help:      "Most recently computed portfolio value",
	})
)

// Histogram metrics
var (
	PropagationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bracket_value",
		Name:      "propagation_duration_seconds",
		Help:      "Duration of a single bracket propagation in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"mode"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PropagationsTotal)
		registry.MustRegister(OverridesConsultedTotal)
		registry.MustRegister(WinProbabilityCacheTotal)
		registry.MustRegister(MissingPositionsTotal)

		// Register gauge metrics
		registry.MustRegister(PortfolioValue)

		// Register histogram metrics
		registry.MustRegister(PropagationDuration)

		// Register delta metrics
		registry.MustRegister(DeltaComputationsTotal)
		registry.MustRegister(DeltaSwing)

		// Register simulation metrics
		registry.MustRegister(SimulationRunsTotal)
		registry.MustRegister(SimulationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPropagation records one propagation run of the given mode.
func RecordPropagation(mode string, durationSeconds float64) {
	PropagationsTotal.WithLabelValues(mode).Inc()
	PropagationDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// RecordOverridesConsulted adds consulted override lookups.
func RecordOverridesConsulted(count int) {
	if count <= 0 {
		return
	}
	OverridesConsultedTotal.Add(float64(count))
}

// RecordCacheLookup records a win probability cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		WinProbabilityCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	WinProbabilityCacheTotal.WithLabelValues("miss").Inc()
}

// RecordMissingPosition records a position that could not be valued.
func RecordMissingPosition() {
	MissingPositionsTotal.Inc()
}

// UpdatePortfolioValue updates the portfolio value gauge.
func UpdatePortfolioValue(value float64) {
	PortfolioValue.Set(value)
}
