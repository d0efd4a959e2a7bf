// Package logger provides Monte Carlo simulation logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SimulationLogger provides dedicated logging for Monte Carlo runs.
type SimulationLogger struct {
	*logrus.Entry
}

// NewSimulationLogger creates a new simulation logger.
func NewSimulationLogger(baseLogger *logrus.Logger) *SimulationLogger {
	return &SimulationLogger{
		Entry: baseLogger.WithField("component", "simulation"),
	}
}

// LogSimulationStarted logs the start of a Monte Carlo batch.
func (sl *SimulationLogger) LogSimulationStarted(iterations, workers int, seed int64) {
	sl.WithFields(logrus.Fields{
		"iterations": iterations,
		"workers":    workers,
		"seed":       seed,
	}).Info("Monte Carlo simulation started")
}

// LogSimulationCompleted logs the summary of a Monte Carlo batch.
func (sl *SimulationLogger) LogSimulationCompleted(iterations int, meanValue, stdValue, var95 float64, durationSeconds float64) {
	sl.WithFields(logrus.Fields{
		"iterations":       iterations,
		"mean_value":       meanValue,
		"std_value":        stdValue,
		"var_95":           var95,
		"duration_seconds": durationSeconds,
	}).Info("Monte Carlo simulation completed")
}

// LogSimulationError logs a failed Monte Carlo run.
func (sl *SimulationLogger) LogSimulationError(iteration int, errorReason string) {
	sl.WithFields(logrus.Fields{
		"iteration":    iteration,
		"error_reason": errorReason,
	}).Error("Monte Carlo iteration failed")
}
