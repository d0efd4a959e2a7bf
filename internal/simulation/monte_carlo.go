// Package simulation builds the distribution of portfolio outcomes by playing
// the bracket out many times.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/fasthash/jody"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-value/internal/logger"
	"github.com/yourusername/bracket-value/internal/metrics"
	"github.com/yourusername/bracket-value/internal/portfolio"
	"github.com/yourusername/bracket-value/internal/tourney"
)

// MonteCarloConfig configures monte carlo simulation
type MonteCarloConfig struct {
	Iterations int
	Workers    int
	// Seed of zero means seed from the clock.
	Seed             int64
	ConfidenceLevels []float64
}

// MonteCarloResult represents monte carlo outcomes
type MonteCarloResult struct {
	Iterations               int                `json:"iterations"`
	Seed                     int64              `json:"seed"`
	ExpectedValue            float64            `json:"expected_value"`
	MeanValue                float64            `json:"mean_value"`
	StdValue                 float64            `json:"std_value"`
	VaR95                    float64            `json:"var_95"`
	VaR99                    float64            `json:"var_99"`
	ProbabilityAboveExpected float64            `json:"probability_above_expected"`
	ProbabilityOfLoss        float64            `json:"probability_of_loss"`
	ConfidenceIntervals      map[string]float64 `json:"confidence_intervals"`
	MeanScores               tourney.TeamScore  `json:"mean_scores"`
	MissingPositions         []string           `json:"missing_positions,omitempty"`
	Distribution             []float64          `json:"distribution"`
}

// Runner plays a tournament out repeatedly and values positions on each draw.
type Runner struct {
	tour   *tourney.Tournament
	valuer *portfolio.Valuer
	log    *logger.SimulationLogger
}

// NewRunner creates a simulation runner.
func NewRunner(tour *tourney.Tournament, valuer *portfolio.Valuer, log *logrus.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	if valuer == nil {
		valuer = portfolio.NewValuer(nil, log)
	}
	return &Runner{tour: tour, valuer: valuer, log: logger.NewSimulationLogger(log)}
}

// Run draws cfg.Iterations brackets. Each draw has its own generator seeded
// from the base seed and the draw index, so results do not depend on the
// number of workers.
func (r *Runner) Run(ctx context.Context, positions portfolio.Positions, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Workers > cfg.Iterations {
		cfg.Workers = cfg.Iterations
	}
	if len(cfg.ConfidenceLevels) == 0 {
		cfg.ConfidenceLevels = []float64{0.9, 0.95, 0.99}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	r.log.LogSimulationStarted(cfg.Iterations, cfg.Workers, seed)

	expected, err := r.tour.CalculateScoresExpected()
	if err != nil {
		metrics.RecordSimulationRun(metrics.OutcomeFailure, time.Since(start).Seconds())
		return MonteCarloResult{}, err
	}
	// Unmatched positions are reported once here; draws value quietly.
	expectedValuation := r.valuer.Value(positions, expected)
	expectedValue := expectedValuation.Total.InexactFloat64()

	distribution := make([]float64, cfg.Iterations)
	sums := make([]tourney.TeamScore, cfg.Workers)
	errs := make([]error, cfg.Workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		sums[w] = make(tourney.TeamScore)
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range jobs {
				if errs[w] != nil {
					continue
				}
				if err := ctx.Err(); err != nil {
					errs[w] = err
					continue
				}
				scores, err := r.tour.CalculateScoresSimulated(rand.New(rand.NewSource(runSeed(seed, i))))
				if err != nil {
					r.log.LogSimulationError(i, err.Error())
					errs[w] = fmt.Errorf("iteration %d: %w", i, err)
					continue
				}
				sums[w].Add(scores)
				distribution[i] = r.valuer.ValueQuiet(positions, scores).Total.InexactFloat64()
			}
		}(w)
	}

	cancelled := false
dispatch:
	for i := 0; i < cfg.Iterations; i++ {
		select {
		case <-ctx.Done():
			cancelled = true
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	// A cancellation that lands after the last draw leaves a complete result.
	err = errors.Join(errs...)
	if cancelled || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		metrics.RecordSimulationRun("cancelled", time.Since(start).Seconds())
		return MonteCarloResult{}, ctx.Err()
	}
	if err != nil {
		metrics.RecordSimulationRun(metrics.OutcomeFailure, time.Since(start).Seconds())
		return MonteCarloResult{}, err
	}

	total := make(tourney.TeamScore, len(expected))
	for _, s := range sums {
		total.Add(s)
	}
	n := decimal.NewFromInt(int64(cfg.Iterations))
	meanScores := make(tourney.TeamScore, len(expected))
	for team := range expected {
		meanScores[team] = total[team].Div(n)
	}

	mean, std := meanStd(distribution)
	result := MonteCarloResult{
		Iterations:               cfg.Iterations,
		Seed:                     seed,
		ExpectedValue:            expectedValue,
		MeanValue:                mean,
		StdValue:                 std,
		VaR95:                    percentile(distribution, 0.05),
		VaR99:                    percentile(distribution, 0.01),
		ProbabilityAboveExpected: probabilityAbove(distribution, expectedValue),
		ProbabilityOfLoss:        probabilityBelow(distribution, 0),
		ConfidenceIntervals:      CalculateConfidenceIntervals(distribution, cfg.ConfidenceLevels),
		MeanScores:               meanScores,
		MissingPositions:         expectedValuation.Missing,
		Distribution:             distribution,
	}

	elapsed := time.Since(start).Seconds()
	metrics.RecordSimulationRun(metrics.OutcomeSuccess, elapsed)
	r.log.LogSimulationCompleted(cfg.Iterations, mean, std, result.VaR95, elapsed)
	return result, nil
}

// runSeed mixes the base seed with the draw index.
func runSeed(base int64, i int) int64 {
	h := jody.HashUint64(uint64(base))
	h = jody.AddUint64(h, uint64(i))
	return int64(h)
}

// CalculateConfidenceIntervals computes the width of each central interval
func CalculateConfidenceIntervals(distribution []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64)
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		low := percentile(distribution, p)
		high := percentile(distribution, 1.0-p)
		results[formatPercent(level)] = high - low
	}
	return results
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	valuesCopy := append([]float64{}, values...)
	sort.Float64s(valuesCopy)
	idx := int(math.Floor(p * float64(len(valuesCopy)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(valuesCopy) {
		idx = len(valuesCopy) - 1
	}
	return valuesCopy[idx]
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func probabilityBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v < threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func formatPercent(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}
