// Package main provides the entry point for the bracket-value CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/bracket-value/internal/config"
	"github.com/yourusername/bracket-value/internal/datasource"
	"github.com/yourusername/bracket-value/internal/health"
	"github.com/yourusername/bracket-value/internal/logger"
	"github.com/yourusername/bracket-value/internal/metrics"
	"github.com/yourusername/bracket-value/internal/portfolio"
	"github.com/yourusername/bracket-value/internal/tourney"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	envFile    string
	log        *logrus.Logger
	cfg        *config.Config
	httpClient *datasource.RateLimitedHTTPClient
	loader     *datasource.Loader
	statusSrv  *health.Server
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the configuration")

	rootCmd.AddCommand(scoreCmd, portfolioCmd, gameDeltaCmd, gamesCmd, deltasCmd, simulateCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "bracket-value",
	Short:         "Value tournament bracket positions",
	Long:          `Propagates advancement probabilities through a single-elimination bracket and values positions held on each team.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupDependencies()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdown()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bracket-value %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	return config.ValidateEnvironment(cfg)
}

func setupDependencies() {
	runID := uuid.New().String()
	log = logger.NewLogger(cfg.App.LogLevel)
	log.AddHook(runIDHook(runID))

	httpClient = datasource.NewRateLimitedHTTPClient(cfg.HTTPClientConfig(), log)
	loader = datasource.NewLoader(httpClient, log)

	if cfg.Metrics.Enabled {
		startStatusServer(runID)
	}

	log.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
		"config":      configFile,
	}).Debug("Configuration loaded")
}

func startStatusServer(runID string) {
	metrics.InitRegistry()

	statusSrv = health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		RunID:       runID,
		Addr:        fmt.Sprintf(":%d", cfg.Metrics.Port),
		MetricsPath: cfg.Metrics.Path,
		Metrics:     metrics.Handler(),
		Logger:      log,
	})
	statusSrv.AddCheck("input_fetcher", httpClient.Check)
	if err := statusSrv.Start(context.Background()); err != nil {
		log.WithError(err).Warn("Status server disabled")
		statusSrv = nil
	}
}

func shutdown() {
	if httpClient != nil {
		httpClient.Close()
	}
	if statusSrv != nil {
		if err := statusSrv.Shutdown(); err != nil {
			log.WithError(err).Warn("Status server shutdown failed")
		}
	}
}

// runIDHook stamps every entry with the id of this invocation.
type runIDHook string

func (h runIDHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h runIDHook) Fire(entry *logrus.Entry) error {
	entry.Data["run_id"] = string(h)
	return nil
}

// buildTournament loads every configured input and constructs the tournament.
func buildTournament(ctx context.Context) (*tourney.Tournament, error) {
	slots, err := loader.LoadBracket(ctx, cfg.Inputs.Bracket)
	if err != nil {
		return nil, err
	}

	params := cfg.ModelParams()
	opts := tourney.Options{
		Slots:       slots,
		ForfeitProb: cfg.ForfeitProbability(),
		Params:      params,
		Logger:      log,
	}

	if cfg.Inputs.Ratings != "" {
		table, err := loader.LoadRatings(ctx, cfg.Inputs.Ratings, cfg.Inputs.Adjustments, params)
		if err != nil {
			return nil, err
		}
		opts.Ratings = table
	}

	if len(cfg.Inputs.Overrides) > 0 {
		ovr, err := loader.LoadOverrides(ctx, cfg.Inputs.Overrides)
		if err != nil {
			return nil, err
		}
		opts.Overrides = ovr
	}

	if opts.Scoring, err = cfg.Scoring(); err != nil {
		return nil, err
	}

	tour, err := tourney.New(opts)
	if err != nil {
		return nil, err
	}
	if statusSrv != nil {
		statusSrv.SetReady(true)
	}
	return tour, nil
}

func loadPositions(ctx context.Context) (portfolio.Positions, error) {
	if cfg.Inputs.Positions == "" {
		return nil, fmt.Errorf("inputs.positions is required for this command")
	}
	return loader.LoadPositions(ctx, cfg.Inputs.Positions)
}

func newValuer() *portfolio.Valuer {
	return portfolio.NewValuer(cfg.NameConversions(), log)
}
