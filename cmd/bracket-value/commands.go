package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/bracket-value/internal/delta"
	"github.com/yourusername/bracket-value/internal/metrics"
	"github.com/yourusername/bracket-value/internal/simulation"
)

var (
	scoreSimulated bool
	scoreSeed      int64
	deltasSave     bool
	deltasLoad     bool
	deltasPrint    bool
	deltasTeams    []string
	simIterations  int
	simWorkers     int
	simSeed        int64
	simJSON        bool
)

func init() {
	scoreCmd.Flags().BoolVar(&scoreSimulated, "simulate", false, "Play the bracket out once instead of computing expected scores")
	scoreCmd.Flags().Int64Var(&scoreSeed, "seed", 0, "Seed for --simulate (0 seeds from the clock)")

	deltasCmd.Flags().BoolVar(&deltasSave, "save", false, "Compute deltas and write them to delta.file")
	deltasCmd.Flags().BoolVar(&deltasLoad, "load", false, "Read deltas from delta.file instead of computing them")
	deltasCmd.Flags().BoolVar(&deltasPrint, "print", true, "Print per-team portfolio deltas")
	deltasCmd.Flags().StringSliceVar(&deltasTeams, "teams", nil, "Restrict the computation to these teams")

	simulateCmd.Flags().IntVar(&simIterations, "iterations", 0, "Override simulation.iterations")
	simulateCmd.Flags().IntVar(&simWorkers, "workers", 0, "Override simulation.workers")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Override simulation.seed")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "Print the full result as JSON")
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the expected score of every team as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tour, err := buildTournament(cmd.Context())
		if err != nil {
			return err
		}
		mode, err := cfg.SortMode()
		if err != nil {
			return err
		}

		if scoreSimulated {
			seed := scoreSeed
			if seed == 0 {
				seed = rand.Int63()
			}
			scores, err := tour.CalculateScoresSimulated(rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}
			log.WithField("seed", seed).Info("Simulated one tournament")
			return scores.WriteCSV(os.Stdout, mode)
		}

		result, err := tour.PropagateExpected()
		if err != nil {
			return err
		}
		if err := result.Scores.WriteCSV(os.Stdout, mode); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, result.Usage.String())
		return nil
	},
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Value the configured positions against expected scores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tour, err := buildTournament(cmd.Context())
		if err != nil {
			return err
		}
		positions, err := loadPositions(cmd.Context())
		if err != nil {
			return err
		}
		scores, err := tour.CalculateScoresExpected()
		if err != nil {
			return err
		}

		valuation := newValuer().Value(positions, scores)
		metrics.UpdatePortfolioValue(valuation.Total.InexactFloat64())

		rows := [][]string{{"name", "team", "quantity", "score", "value"}}
		for _, h := range valuation.Holdings {
			rows = append(rows, []string{h.Name, h.Team, h.Quantity.String(), h.Score.StringFixed(3), h.Value.StringFixed(3)})
		}
		if err := writeCSV(os.Stdout, rows); err != nil {
			return err
		}
		fmt.Printf("Portfolio value: %s\n", valuation.Total.StringFixed(3))
		if len(valuation.Missing) > 0 {
			fmt.Fprintf(os.Stderr, "Unmatched positions: %v\n", valuation.Missing)
		}
		return nil
	},
}

var gameDeltaCmd = &cobra.Command{
	Use:   "game-delta TEAM1 TEAM2",
	Short: "Value the portfolio with each side of a game forced to win",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tour, err := buildTournament(cmd.Context())
		if err != nil {
			return err
		}
		positions, err := loadPositions(cmd.Context())
		if err != nil {
			return err
		}

		engine := delta.NewEngine(tour, newValuer(), log)
		result, err := engine.GameDelta(positions, args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("%s win: %s\n", result.Team1, result.WinValue.StringFixed(3))
		fmt.Printf("%s win: %s\n", result.Team2, result.LossValue.StringFixed(3))
		fmt.Printf("Swing: %s\n", result.Swing().StringFixed(3))

		mode, err := cfg.SortMode()
		if err != nil {
			return err
		}
		return result.ShareDeltas.WriteCSV(os.Stdout, mode)
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the games that can currently be played",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tour, err := buildTournament(cmd.Context())
		if err != nil {
			return err
		}

		rows := [][]string{{"round", "team1", "team2", "team1_win_probability"}}
		for _, g := range tour.PendingGames() {
			round := strconv.Itoa(g.Round)
			if g.Opening {
				round = "opening"
			}
			p, err := tour.WinProbability(g.Team1, g.Team2)
			if err != nil {
				return err
			}
			rows = append(rows, []string{round, g.Team1, g.Team2, p.StringFixed(4)})
		}
		return writeCSV(os.Stdout, rows)
	},
}

var deltasCmd = &cobra.Command{
	Use:   "deltas",
	Short: "Compute, store or load the per-team rating deltas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (deltasSave || deltasLoad) && cfg.Delta.File == "" {
			return fmt.Errorf("delta.file is required with --save or --load")
		}
		if deltasSave && deltasLoad {
			return fmt.Errorf("--save and --load are mutually exclusive")
		}

		store := delta.NewBlobStore(log)
		var deltas delta.Deltas
		if deltasLoad {
			loaded, err := store.Load(cfg.Delta.File)
			if err != nil {
				return err
			}
			deltas = loaded
		} else {
			tour, err := buildTournament(cmd.Context())
			if err != nil {
				return err
			}
			positions, err := loadPositions(cmd.Context())
			if err != nil {
				return err
			}
			engine := delta.NewEngine(tour, newValuer(), log)
			deltas, err = engine.ComputeDeltas(positions, deltasTeams, cfg.PointDelta())
			if err != nil {
				return err
			}
		}

		if deltasSave {
			if err := store.Save(cfg.Delta.File, deltas); err != nil {
				return err
			}
		}

		if deltasPrint {
			return printDeltas(os.Stdout, deltas)
		}
		return nil
	},
}

func printDeltas(out io.Writer, deltas delta.Deltas) error {
	teams := deltas.Teams()
	sort.Slice(teams, func(i, j int) bool {
		return deltas.TeamDeltas[teams[i]].GreaterThan(deltas.TeamDeltas[teams[j]])
	})

	rows := [][]string{{"team", "portfolio_delta"}}
	for _, team := range teams {
		rows = append(rows, []string{team, deltas.TeamDeltas[team].StringFixed(3)})
	}
	return writeCSV(out, rows)
}

// writeCSV writes rows and reports the first write or flush error.
func writeCSV(out io.Writer, rows [][]string) error {
	return csv.NewWriter(out).WriteAll(rows)
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte Carlo simulation of the portfolio value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tour, err := buildTournament(ctx)
		if err != nil {
			return err
		}
		positions, err := loadPositions(ctx)
		if err != nil {
			return err
		}

		mcCfg := simulation.MonteCarloConfig{
			Iterations:       cfg.Simulation.Iterations,
			Workers:          cfg.Simulation.Workers,
			Seed:             cfg.Simulation.Seed,
			ConfidenceLevels: []float64{0.05, 0.25, 0.5, 0.75, 0.95},
		}
		if simIterations > 0 {
			mcCfg.Iterations = simIterations
		}
		if simWorkers > 0 {
			mcCfg.Workers = simWorkers
		}
		if simSeed != 0 {
			mcCfg.Seed = simSeed
		}

		runner := simulation.NewRunner(tour, newValuer(), log)
		result, err := runner.Run(ctx, positions, mcCfg)
		if err != nil {
			return err
		}

		if simJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printSimulation(result)
		return nil
	},
}

func printSimulation(result simulation.MonteCarloResult) {
	fmt.Printf("Iterations:          %d (seed %d)\n", result.Iterations, result.Seed)
	fmt.Printf("Expected value:      %.3f\n", result.ExpectedValue)
	fmt.Printf("Mean value:          %.3f\n", result.MeanValue)
	fmt.Printf("Std deviation:       %.3f\n", result.StdValue)
	fmt.Printf("VaR 95%% / 99%%:       %.3f / %.3f\n", result.VaR95, result.VaR99)
	fmt.Printf("P(value > expected): %.3f\n", result.ProbabilityAboveExpected)
	fmt.Printf("P(value < 0):        %.3f\n", result.ProbabilityOfLoss)

	levels := make([]string, 0, len(result.ConfidenceIntervals))
	for level := range result.ConfidenceIntervals {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		fmt.Printf("  percentile %-6s %.3f\n", level, result.ConfidenceIntervals[level])
	}
	log.WithField("mean_total_score", result.MeanScores.Total().StringFixed(3)).Debug("Simulation summary printed")
}
