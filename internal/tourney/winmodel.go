package tourney

import (
	"fmt"

	"github.com/atgjack/prob"
	"github.com/shopspring/decimal"

	"github.com/yourusername/bracket-value/internal/ratings"
)

var standardNormal = prob.Normal{Mu: 0, Sigma: 1}

// WinModel converts efficiency ratings into a head-to-head win probability by
// treating the scoring margin as normally distributed.
type WinModel struct {
	Params ratings.Params
}

// NewWinModel creates a model using the given league averages.
func NewWinModel(params ratings.Params) WinModel {
	return WinModel{Params: params}
}

// Probability returns P(team with r1 beats team with r2).
func (m WinModel) Probability(r1, r2 ratings.Rating) (decimal.Decimal, error) {
	one := decimal.NewFromInt(1)

	// expected possessions per team
	tempo := r1.Tempo.Mul(r2.Tempo).Div(m.Params.AvgTempo)

	// points per possession relative to the league average
	scoring1 := one.Add(r1.Offense).Add(r2.Defense)
	scoring2 := one.Add(r2.Offense).Add(r1.Defense)

	perPossession := m.Params.AvgScoring.Div(decimal.NewFromInt(100))
	score1 := scoring1.Mul(perPossession).Mul(tempo)
	score2 := scoring2.Mul(perPossession).Mul(tempo)
	diff := score1.Sub(score2)

	stddev := scoring1.Add(scoring2).Div(decimal.NewFromInt(2)).
		Mul(tempo.Div(m.Params.AvgTempo)).
		Mul(m.Params.ScoringStdDev)
	if !stddev.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: stddev %s", ErrDegenerateRating, stddev)
	}

	z := diff.Div(stddev).InexactFloat64()
	return decimal.NewFromFloat(standardNormal.Cdf(z)), nil
}

// applyForfeit folds in the chance that the would-be winner forfeits.
func applyForfeit(p, forfeit decimal.Decimal) decimal.Decimal {
	if forfeit.IsZero() {
		return p
	}
	one := decimal.NewFromInt(1)
	return p.Mul(one.Sub(forfeit)).Add(one.Sub(p).Mul(forfeit))
}
