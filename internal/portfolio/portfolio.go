// Package portfolio values a set of market positions against team scores.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-value/internal/logger"
	"github.com/yourusername/bracket-value/internal/metrics"
	"github.com/yourusername/bracket-value/internal/tourney"
)

// PointsKey is the pseudo-team whose quantity is added to the value as-is.
const PointsKey = "points"

// Positions maps a market team name to a signed share quantity.
type Positions map[string]decimal.Decimal

// DefaultConversions maps market spellings to bracket spellings.
func DefaultConversions() map[string]string {
	return map[string]string{
		"Michigan State":         "Michigan St.",
		"Southern California":    "USC",
		"Middle Tennessee State": "Middle Tennessee",
		"Miami":                  "Miami FL",
		"Iowa State":             "Iowa St.",
		"Kent State":             "Kent St.",
		"Nevada Reno":            "Nevada",
		"Virginia Commonwealth":  "VCU",
		"California Davis":       "UC Davis",
		"Wichita State":          "Wichita St.",
		"Florida State":          "Florida St.",
	}
}

// Holding is one valued position.
type Holding struct {
	Name     string
	Team     string
	Quantity decimal.Decimal
	Score    decimal.Decimal
	Value    decimal.Decimal
	Missing  bool
}

// Valuation is the result of valuing a portfolio.
type Valuation struct {
	Total    decimal.Decimal
	Holdings []Holding
	Missing  []string
}

// Valuer values positions, resolving market names to bracket names first.
type Valuer struct {
	conversions map[string]string
	log         *logger.RunLogger
}

// NewValuer creates a valuer. A nil conversions map disables renaming.
func NewValuer(conversions map[string]string, log *logrus.Logger) *Valuer {
	if log == nil {
		log = logger.Discard()
	}
	names := make(map[string]string, len(conversions))
	for k, v := range conversions {
		names[k] = v
	}
	return &Valuer{conversions: names, log: logger.NewRunLogger(log)}
}

// Resolve returns the bracket name for a market name.
func (v *Valuer) Resolve(name string) string {
	if team, ok := v.conversions[name]; ok {
		return team
	}
	return name
}

// Value sums quantity times score over all positions. Teams without a score
// are reported and valued at zero; zero quantities are skipped.
func (v *Valuer) Value(positions Positions, scores tourney.TeamScore) Valuation {
	return v.value(positions, scores, true)
}

// ValueQuiet is Value without the missing-team warning and metric. Callers
// valuing many draws of the same positions report Missing once themselves.
func (v *Valuer) ValueQuiet(positions Positions, scores tourney.TeamScore) Valuation {
	return v.value(positions, scores, false)
}

func (v *Valuer) value(positions Positions, scores tourney.TeamScore, report bool) Valuation {
	names := make([]string, 0, len(positions))
	for name := range positions {
		names = append(names, name)
	}
	sort.Strings(names)

	result := Valuation{Total: decimal.Zero}
	for _, name := range names {
		qty := positions[name]
		if qty.IsZero() {
			continue
		}

		if name == PointsKey {
			result.Total = result.Total.Add(qty)
			result.Holdings = append(result.Holdings, Holding{Name: name, Quantity: qty, Value: qty})
			continue
		}

		team := v.Resolve(name)
		score, ok := scores[team]
		if !ok {
			if report {
				v.log.LogMissingPosition(name, team, qty.InexactFloat64())
				metrics.RecordMissingPosition()
			}
			result.Missing = append(result.Missing, name)
			result.Holdings = append(result.Holdings, Holding{
				Name: name, Team: team, Quantity: qty, Score: decimal.Zero, Value: decimal.Zero, Missing: true,
			})
			continue
		}

		value := score.Mul(qty)
		result.Total = result.Total.Add(value)
		result.Holdings = append(result.Holdings, Holding{
			Name: name, Team: team, Quantity: qty, Score: score, Value: value,
		})
	}
	return result
}
