package simulation

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bracket-value/internal/portfolio"
	"github.com/yourusername/bracket-value/internal/ratings"
	"github.com/yourusername/bracket-value/internal/tourney"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner(newTestTournament(t), portfolio.NewValuer(nil, nil), nil)
}

func newTestTournament(t *testing.T) *tourney.Tournament {
	t.Helper()
	rating := func(offense, defense, tempo string) ratings.Rating {
		return ratings.Rating{Offense: d(offense), Defense: d(defense), Tempo: d(tempo)}
	}
	tour, err := tourney.New(tourney.Options{
		Slots: []tourney.Slot{tourney.Bye("Auburn"), tourney.Bye("Drake"), tourney.Bye("Baylor"), tourney.Bye("Clemson")},
		Ratings: ratings.Table{
			"Auburn":  rating("0.09", "-0.06", "68.2"),
			"Baylor":  rating("0.04", "-0.02", "66.0"),
			"Clemson": rating("0.05", "-0.03", "65.1"),
			"Drake":   rating("0.01", "0.00", "67.9"),
		},
		Scoring: tourney.StandardScoring(),
	})
	require.NoError(t, err)
	return tour
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	runner := newTestRunner(t)
	positions := portfolio.Positions{"Auburn": d("3"), "Clemson": d("-1")}

	serial, err := runner.Run(context.Background(), positions, MonteCarloConfig{Iterations: 500, Workers: 1, Seed: 99})
	require.NoError(t, err)
	parallel, err := runner.Run(context.Background(), positions, MonteCarloConfig{Iterations: 500, Workers: 4, Seed: 99})
	require.NoError(t, err)

	assert.Equal(t, serial.Distribution, parallel.Distribution)
	for team, v := range serial.MeanScores {
		assert.True(t, v.Equal(parallel.MeanScores[team]), team)
	}
}

func TestRunConvergesToExpected(t *testing.T) {
	runner := newTestRunner(t)
	positions := portfolio.Positions{"Auburn": d("3"), "Clemson": d("-1"), portfolio.PointsKey: d("2")}

	result, err := runner.Run(context.Background(), positions, MonteCarloConfig{Iterations: 20000, Workers: 4, Seed: 1234})
	require.NoError(t, err)

	assert.InDelta(t, result.ExpectedValue, result.MeanValue, 0.1)
	assert.InDelta(t, 3.0, result.MeanScores.Total().InexactFloat64(), 1e-9)
	assert.LessOrEqual(t, result.VaR99, result.VaR95)
	assert.Contains(t, result.ConfidenceIntervals, "95%")
	assert.Len(t, result.Distribution, 20000)
}

func TestRunCancelled(t *testing.T) {
	runner := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, nil, MonteCarloConfig{Iterations: 100, Workers: 2, Seed: 5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReportsMissingPositionOnce(t *testing.T) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetLevel(logrus.WarnLevel)

	runner := NewRunner(newTestTournament(t), portfolio.NewValuer(nil, log), log)
	positions := portfolio.Positions{"Nowhere": d("1"), "Auburn": d("1")}

	result, err := runner.Run(context.Background(), positions, MonteCarloConfig{Iterations: 500, Workers: 2, Seed: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"Nowhere"}, result.MissingPositions)
	assert.Equal(t, 1, strings.Count(buf.String(), "Missing team in portfolio valuation"))
}

// lateCancelContext reports cancellation only after limit Err calls, which
// lands the cancellation after every draw has been taken.
type lateCancelContext struct {
	context.Context
	calls atomic.Int64
	limit int64
}

func (c *lateCancelContext) Err() error {
	if c.calls.Add(1) > c.limit {
		return context.Canceled
	}
	return nil
}

func TestRunKeepsResultWhenCancelledAfterLastDraw(t *testing.T) {
	runner := newTestRunner(t)
	ctx := &lateCancelContext{Context: context.Background(), limit: 50}

	result, err := runner.Run(ctx, portfolio.Positions{"Auburn": d("1")}, MonteCarloConfig{Iterations: 50, Workers: 2, Seed: 8})
	require.NoError(t, err)
	assert.Len(t, result.Distribution, 50)
}

func TestCalculateConfidenceIntervals(t *testing.T) {
	distribution := make([]float64, 101)
	for i := range distribution {
		distribution[i] = float64(i)
	}

	intervals := CalculateConfidenceIntervals(distribution, []float64{0.9})
	assert.InDelta(t, 90.0, intervals["90%"], 1.0)
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, std)

	mean, std = meanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}

func TestRunSeedDistinct(t *testing.T) {
	seen := make(map[int64]struct{})
	for i := 0; i < 1000; i++ {
		seen[runSeed(42, i)] = struct{}{}
	}
	assert.Len(t, seen, 1000)
	assert.Equal(t, runSeed(42, 7), runSeed(42, 7))
}
