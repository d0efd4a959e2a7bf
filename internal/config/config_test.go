// Package config provides configuration management for the bracket-value tool.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yourusername/bracket-value/internal/tourney"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	customScoringConfigPath      = "testdata/custom_scoring_config.yaml"
	invalidConfigPath            = "testdata/invalid_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	expectedValidationError      = "expected validation error, got nil"
	bracketValueName             = "bracket-value"
	developmentEnv               = "development"
	productionEnv                = "production"
	testDataDir                  = "TEST_DATA_DIR"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != bracketValueName {
		t.Errorf("expected app name '%s', got '%s'", bracketValueName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Inputs.Bracket != "data/bracket.txt" {
		t.Errorf("expected bracket 'data/bracket.txt', got '%s'", cfg.Inputs.Bracket)
	}

	if len(cfg.Inputs.Adjustments) != 1 || len(cfg.Inputs.Overrides) != 1 {
		t.Errorf("expected one adjustment and one override file, got %v and %v", cfg.Inputs.Adjustments, cfg.Inputs.Overrides)
	}

	if cfg.Simulation.Workers != 4 || cfg.Simulation.Seed != 42 {
		t.Errorf("expected workers 4 and seed 42, got %d and %d", cfg.Simulation.Workers, cfg.Simulation.Seed)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}

	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected 'config file not found' error, got %v", err)
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults apply without a file
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if cfg.App.Name != bracketValueName {
		t.Errorf("expected default app name '%s', got '%s'", bracketValueName, cfg.App.Name)
	}

	if cfg.Tournament.ScoringMode != tourney.ScoringStandard {
		t.Errorf("expected default scoring mode '%s', got '%s'", tourney.ScoringStandard, cfg.Tournament.ScoringMode)
	}

	if cfg.Simulation.Iterations != 10000 {
		t.Errorf("expected default iterations 10000, got %d", cfg.Simulation.Iterations)
	}

	if !cfg.Portfolio.DefaultConversions {
		t.Error("expected default name conversions to be enabled")
	}

	// No bracket location means the defaults alone are not runnable
	if err := Validate(cfg); err == nil {
		t.Error(expectedValidationError)
	}
}

// TestEnvironmentVariableExpansion tests ${VAR} placeholders in the YAML file
func TestEnvironmentVariableExpansion(t *testing.T) {
	os.Setenv(testDataDir, "/srv/bracket")
	defer os.Unsetenv(testDataDir)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if cfg.Inputs.Bracket != "/srv/bracket/bracket.txt" {
		t.Errorf("expected expanded bracket path, got '%s'", cfg.Inputs.Bracket)
	}

	if cfg.Inputs.Ratings != "/srv/bracket/ratings.csv" {
		t.Errorf("expected expanded ratings path, got '%s'", cfg.Inputs.Ratings)
	}
}

// TestEnvironmentVariableOverride tests BRACKET_VALUE_* overrides
func TestEnvironmentVariableOverride(t *testing.T) {
	os.Setenv("BRACKET_VALUE_APP_LOG_LEVEL", "debug")
	os.Setenv("BRACKET_VALUE_SIMULATION_ITERATIONS", "250")
	defer os.Unsetenv("BRACKET_VALUE_APP_LOG_LEVEL")
	defer os.Unsetenv("BRACKET_VALUE_SIMULATION_ITERATIONS")

	cfg, err := LoadWithDefaults(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if cfg.App.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.App.LogLevel)
	}

	if cfg.Simulation.Iterations != 250 {
		t.Errorf("expected iterations 250, got %d", cfg.Simulation.Iterations)
	}
}

// TestValidationInvalidFields tests that each custom tag rejects bad values
func TestValidationInvalidFields(t *testing.T) {
	cfg, err := Load(invalidConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	err = Validate(cfg)
	if err == nil {
		t.Fatal(expectedValidationError)
	}

	for _, field := range []string{"Environment", "LogLevel", "ForfeitProbability", "Sort"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected validation error to mention '%s', got %v", field, err)
		}
	}
}

// TestCustomScoringConfig tests a custom schedule with overrides-only inputs
func TestCustomScoringConfig(t *testing.T) {
	cfg, err := Load(customScoringConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	scoring, err := cfg.Scoring()
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if len(scoring) != 6 || !scoring[5].Equal(decimal.NewFromInt(32)) {
		t.Errorf("expected six rounds ending in 32, got %v", scoring)
	}
}

// TestCrossFieldValidation tests validations spanning several sections
func TestCrossFieldValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "custom mode without weights",
			mutate: func(c *Config) { c.Tournament.ScoringMode = tourney.ScoringCustom },
			errMsg: "requires custom_scoring",
		},
		{
			name:   "weights without custom mode",
			mutate: func(c *Config) { c.Tournament.CustomScoring = []float64{1, 2} },
			errMsg: "only used with scoring_mode",
		},
		{
			name: "no ratings and no overrides",
			mutate: func(c *Config) {
				c.Inputs.Ratings = ""
				c.Inputs.Adjustments = nil
				c.Inputs.Overrides = nil
			},
			errMsg: "inputs.ratings is required",
		},
		{
			name: "adjustments without ratings",
			mutate: func(c *Config) {
				c.Inputs.Ratings = ""
			},
			errMsg: "inputs.adjustments requires",
		},
		{
			name:   "metrics without path",
			mutate: func(c *Config) { c.Metrics.Path = "" },
			errMsg: "metrics.enabled requires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(validConfigPath)
			if err != nil {
				t.Fatalf(expectedNoErrorLoadingConfig, err)
			}
			tt.mutate(cfg)

			err = Validate(cfg)
			if err == nil {
				t.Fatal(expectedValidationError)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing '%s', got %v", tt.errMsg, err)
			}
		})
	}
}

// TestValidateEnvironment tests environment-specific requirements
func TestValidateEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if err := ValidateEnvironment(cfg); err != nil {
		t.Errorf(expectedNoErrorMsg, err)
	}

	cfg.App.Environment = productionEnv
	cfg.App.LogLevel = "debug"
	if err := ValidateEnvironment(cfg); err == nil {
		t.Error("expected error for debug logging in production")
	}

	if !cfg.IsProduction() || cfg.IsDevelopment() || cfg.IsStaging() {
		t.Error("expected only IsProduction to report true")
	}
}

// TestDerivedValues tests conversions from raw settings to domain types
func TestDerivedValues(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	params := cfg.ModelParams()
	if !params.AvgScoring.Equal(decimal.RequireFromString("104.6")) {
		t.Errorf("expected avg scoring 104.6, got %s", params.AvgScoring)
	}

	if !cfg.ForfeitProbability().Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("expected forfeit 0.01, got %s", cfg.ForfeitProbability())
	}

	mode, err := cfg.SortMode()
	if err != nil || mode != tourney.SortByScore {
		t.Errorf("expected score ordering, got %v (%v)", mode, err)
	}

	conversions := cfg.NameConversions()
	if conversions["Saint Mary's"] != "Saint Mary's (CA)" {
		t.Errorf("expected configured conversion, got '%s'", conversions["Saint Mary's"])
	}
	if len(conversions) < 2 {
		t.Errorf("expected default conversions to be merged, got %d entries", len(conversions))
	}

	httpCfg := cfg.HTTPClientConfig()
	if httpCfg.MaxRetries != 3 || httpCfg.RateLimit != 5 {
		t.Errorf("unexpected http client config %+v", httpCfg)
	}
}

// TestLoadConfigRelativeToDir tests loading with an absolute path
func TestLoadConfigRelativeToDir(t *testing.T) {
	abs, err := filepath.Abs(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if _, err := Load(abs); err != nil {
		t.Errorf(expectedNoErrorLoadingConfig, err)
	}
}
