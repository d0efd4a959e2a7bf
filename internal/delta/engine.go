// Package delta measures how single hypothetical changes move team scores
// and portfolio value.
package delta

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-value/internal/logger"
	"github.com/yourusername/bracket-value/internal/metrics"
	"github.com/yourusername/bracket-value/internal/portfolio"
	"github.com/yourusername/bracket-value/internal/ratings"
	"github.com/yourusername/bracket-value/internal/tourney"
)

// Delta kinds, used as metric labels.
const (
	KindTeam = "team"
	KindGame = "game"
)

// Engine runs what-if scenarios against a tournament. It substitutes state
// on the tournament temporarily, so it must not run concurrently with any
// other computation on the same tournament.
type Engine struct {
	tour   *tourney.Tournament
	valuer *portfolio.Valuer
	log    *logger.RunLogger
}

// NewEngine creates a delta engine.
func NewEngine(tour *tourney.Tournament, valuer *portfolio.Valuer, log *logrus.Logger) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	if valuer == nil {
		valuer = portfolio.NewValuer(nil, log)
	}
	return &Engine{tour: tour, valuer: valuer, log: logger.NewRunLogger(log)}
}

// TeamDelta rescores the bracket with team's rating shifted by pointDelta
// points of scoring margin in each direction. The ratings table is unchanged
// afterwards.
func (e *Engine) TeamDelta(team string, pointDelta decimal.Decimal) (positive, negative tourney.TeamScore, err error) {
	defer func() { metrics.RecordDelta(KindTeam, outcome(err)) }()

	current, err := e.tour.Rating(team)
	if err != nil {
		return nil, nil, err
	}
	adj := pointDelta.Div(e.tour.Params().AvgScoring)

	positive, err = e.scoresWith(team, current.Shift(adj))
	if err != nil {
		return nil, nil, fmt.Errorf("positive delta for %s: %w", team, err)
	}
	negative, err = e.scoresWith(team, current.Shift(adj.Neg()))
	if err != nil {
		return nil, nil, fmt.Errorf("negative delta for %s: %w", team, err)
	}

	swing := positive[team].Sub(negative[team])
	metrics.RecordDeltaSwing(KindTeam, swing.InexactFloat64())
	e.log.LogTeamDelta(team, pointDelta.InexactFloat64(), positive[team].InexactFloat64(), negative[team].InexactFloat64())
	return positive, negative, nil
}

func (e *Engine) scoresWith(team string, r ratings.Rating) (tourney.TeamScore, error) {
	var scores tourney.TeamScore
	err := e.tour.WithRating(team, r, func() error {
		var err error
		scores, err = e.tour.CalculateScoresExpected()
		return err
	})
	return scores, err
}

// GameResult is the portfolio outcome of forcing a single game.
type GameResult struct {
	Team1     string
	Team2     string
	WinValue  decimal.Decimal
	LossValue decimal.Decimal
	// ShareDeltas is each team's score when team1 wins minus its score when
	// team2 wins.
	ShareDeltas tourney.TeamScore
}

// Swing returns the portfolio difference between the two outcomes.
func (g GameResult) Swing() decimal.Decimal {
	return g.WinValue.Sub(g.LossValue)
}

// GameDelta values positions with team1 forced to win, then with team2 forced
// to win. Whatever override existed for the game before is restored.
func (e *Engine) GameDelta(positions portfolio.Positions, team1, team2 string) (result GameResult, err error) {
	defer func() { metrics.RecordDelta(KindGame, outcome(err)) }()

	win, err := e.scoresForced(team1, team2, decimal.NewFromInt(1))
	if err != nil {
		return GameResult{}, fmt.Errorf("%s beats %s: %w", team1, team2, err)
	}
	loss, err := e.scoresForced(team1, team2, decimal.Zero)
	if err != nil {
		return GameResult{}, fmt.Errorf("%s beats %s: %w", team2, team1, err)
	}

	shares := make(tourney.TeamScore, len(win))
	for team, score := range win {
		shares[team] = score.Sub(loss[team])
	}

	result = GameResult{
		Team1:       team1,
		Team2:       team2,
		WinValue:    e.valuer.Value(positions, win).Total,
		LossValue:   e.valuer.Value(positions, loss).Total,
		ShareDeltas: shares,
	}
	metrics.RecordDeltaSwing(KindGame, result.Swing().InexactFloat64())
	e.log.LogGameDelta(team1, team2, result.WinValue.InexactFloat64(), result.LossValue.InexactFloat64())
	return result, nil
}

func (e *Engine) scoresForced(team1, team2 string, p decimal.Decimal) (tourney.TeamScore, error) {
	var scores tourney.TeamScore
	err := e.tour.WithOverride(team1, team2, p, func() error {
		var err error
		scores, err = e.tour.CalculateScoresExpected()
		return err
	})
	return scores, err
}

// ComputeDeltas runs TeamDelta for each team and records the portfolio swing
// and every team's score swing. An empty teams list means the whole bracket.
func (e *Engine) ComputeDeltas(positions portfolio.Positions, teams []string, pointDelta decimal.Decimal) (Deltas, error) {
	if len(teams) == 0 {
		teams = e.tour.Teams()
	}

	deltas := NewDeltas()
	for _, team := range teams {
		positive, negative, err := e.TeamDelta(team, pointDelta)
		if err != nil {
			return Deltas{}, err
		}

		posValue := e.valuer.Value(positions, positive).Total
		negValue := e.valuer.Value(positions, negative).Total
		deltas.TeamDeltas[team] = posValue.Sub(negValue)

		row := make(map[string]decimal.Decimal, len(positive))
		for other, score := range positive {
			row[other] = score.Sub(negative[other])
		}
		deltas.PairwiseDeltas[team] = row
	}
	return deltas, nil
}

func outcome(err error) string {
	if err != nil {
		return metrics.OutcomeFailure
	}
	return metrics.OutcomeSuccess
}
