// Package logger provides bracket-run logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RunLogger provides dedicated logging for propagation and delta runs.
type RunLogger struct {
	*logrus.Entry
}

// NewRunLogger creates a new run logger.
func NewRunLogger(baseLogger *logrus.Logger) *RunLogger {
	return &RunLogger{
		Entry: baseLogger.WithField("component", "tourney"),
	}
}

// LogPropagation logs a completed propagation.
func (rl *RunLogger) LogPropagation(mode string, teams, rounds, overridesConsulted int, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"mode":                mode,
		"teams":               teams,
		"rounds":              rounds,
		"overrides_consulted": overridesConsulted,
		"duration_ms":         durationMs,
	}).Debug("Bracket propagation completed")
}

// LogRoundMass logs the total advancement probability after a round.
func (rl *RunLogger) LogRoundMass(round, games int, mass float64) {
	rl.WithFields(logrus.Fields{
		"round": round,
		"games": games,
		"mass":  mass,
	}).Debug("Round probability mass")
}

// LogTeamDelta logs a rating perturbation result.
func (rl *RunLogger) LogTeamDelta(team string, pointDelta, positiveScore, negativeScore float64) {
	rl.WithFields(logrus.Fields{
		"team":           team,
		"point_delta":    pointDelta,
		"positive_score": positiveScore,
		"negative_score": negativeScore,
		"event_type":     "team_delta",
	}).Info("Team delta computed")
}

// LogGameDelta logs a forced-outcome result.
func (rl *RunLogger) LogGameDelta(team1, team2 string, winValue, lossValue float64) {
	rl.WithFields(logrus.Fields{
		"team1":      team1,
		"team2":      team2,
		"win_value":  winValue,
		"loss_value": lossValue,
		"swing":      winValue - lossValue,
		"event_type": "game_delta",
	}).Info("Game delta computed")
}

// LogMissingPosition logs a position whose team has no score.
func (rl *RunLogger) LogMissingPosition(marketName, resolvedName string, quantity float64) {
	rl.WithFields(logrus.Fields{
		"market_name":   marketName,
		"resolved_name": resolvedName,
		"quantity":      quantity,
	}).Warn("Missing team in portfolio valuation")
}
