// Package config provides configuration management for the bracket-value tool.
package config

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/bracket-value/internal/datasource"
	"github.com/yourusername/bracket-value/internal/portfolio"
	"github.com/yourusername/bracket-value/internal/ratings"
	"github.com/yourusername/bracket-value/internal/tourney"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Inputs     InputsConfig     `mapstructure:"inputs" validate:"required"`
	Model      ModelConfig      `mapstructure:"model" validate:"required"`
	Tournament TournamentConfig `mapstructure:"tournament" validate:"required"`
	Output     OutputConfig     `mapstructure:"output" validate:"required"`
	Portfolio  PortfolioConfig  `mapstructure:"portfolio"`
	Delta      DeltaConfig      `mapstructure:"delta" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	HTTP       HTTPConfig       `mapstructure:"http" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// InputsConfig lists the input locations. Each may be a path or an http(s) URL.
type InputsConfig struct {
	Bracket     string   `mapstructure:"bracket" validate:"required"`
	Ratings     string   `mapstructure:"ratings"`
	Adjustments []string `mapstructure:"adjustments"`
	Overrides   []string `mapstructure:"overrides"`
	Positions   string   `mapstructure:"positions"`
}

// ModelConfig holds the league averages the win model is built on
type ModelConfig struct {
	AvgScoring    float64 `mapstructure:"avg_scoring" validate:"required,gt=0"`
	AvgTempo      float64 `mapstructure:"avg_tempo" validate:"required,gt=0"`
	ScoringStdDev float64 `mapstructure:"scoring_stddev" validate:"required,gt=0"`
}

// TournamentConfig represents scoring and forfeit settings
type TournamentConfig struct {
	ScoringMode        string    `mapstructure:"scoring_mode" validate:"required,scoringmode"`
	CustomScoring      []float64 `mapstructure:"custom_scoring" validate:"dive,gte=0"`
	ForfeitProbability float64   `mapstructure:"forfeit_probability" validate:"gte=0,lt=1"`
}

// OutputConfig represents score output settings
type OutputConfig struct {
	Sort string `mapstructure:"sort" validate:"required,sortmode"`
}

// NameConversion maps a market team name to its bracket spelling
type NameConversion struct {
	Market  string `mapstructure:"market" validate:"required"`
	Bracket string `mapstructure:"bracket" validate:"required"`
}

// PortfolioConfig represents portfolio valuation settings
type PortfolioConfig struct {
	NameConversions    []NameConversion `mapstructure:"name_conversions" validate:"dive"`
	DefaultConversions bool             `mapstructure:"default_conversions"`
}

// DeltaConfig represents delta engine settings
type DeltaConfig struct {
	PointDelta float64 `mapstructure:"point_delta" validate:"required,gt=0"`
	File       string  `mapstructure:"file"`
}

// SimulationConfig represents Monte Carlo settings
type SimulationConfig struct {
	Iterations int   `mapstructure:"iterations" validate:"required,gt=0"`
	Workers    int   `mapstructure:"workers" validate:"gte=0"`
	Seed       int64 `mapstructure:"seed"`
}

// HTTPConfig represents settings for inputs fetched over HTTP
type HTTPConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ModelParams returns the win model constants as decimals
func (c *Config) ModelParams() ratings.Params {
	return ratings.Params{
		AvgScoring:    decimal.NewFromFloat(c.Model.AvgScoring),
		AvgTempo:      decimal.NewFromFloat(c.Model.AvgTempo),
		ScoringStdDev: decimal.NewFromFloat(c.Model.ScoringStdDev),
	}
}

// Scoring returns the per-round point schedule
func (c *Config) Scoring() ([]decimal.Decimal, error) {
	return tourney.ScoringFor(c.Tournament.ScoringMode, c.Tournament.CustomScoring)
}

// ForfeitProbability returns the forfeit probability as a decimal
func (c *Config) ForfeitProbability() decimal.Decimal {
	return decimal.NewFromFloat(c.Tournament.ForfeitProbability)
}

// SortMode returns the output ordering
func (c *Config) SortMode() (tourney.SortMode, error) {
	return tourney.ParseSortMode(c.Output.Sort)
}

// PointDelta returns the team delta size in points of scoring margin
func (c *Config) PointDelta() decimal.Decimal {
	return decimal.NewFromFloat(c.Delta.PointDelta)
}

// NameConversions returns the market-to-bracket name table
func (c *Config) NameConversions() map[string]string {
	conversions := make(map[string]string)
	if c.Portfolio.DefaultConversions {
		conversions = portfolio.DefaultConversions()
	}
	for _, nc := range c.Portfolio.NameConversions {
		conversions[nc.Market] = nc.Bracket
	}
	return conversions
}

// HTTPClientConfig returns the settings for fetching remote inputs
func (c *Config) HTTPClientConfig() datasource.HTTPClientConfig {
	cfg := datasource.DefaultHTTPClientConfig()
	cfg.Timeout = time.Duration(c.HTTP.TimeoutSeconds) * time.Second
	cfg.MaxRetries = c.HTTP.MaxRetries
	cfg.RateLimit = c.HTTP.RateLimit
	return cfg
}
