// Package config provides configuration management for the bracket-value tool.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/bracket-value/internal/tourney"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("sortmode", validateSortMode)
	v.RegisterValidation("scoringmode", validateScoringMode)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateSortMode validates the output ordering
func validateSortMode(fl validator.FieldLevel) bool {
	_, err := tourney.ParseSortMode(fl.Field().String())
	return err == nil
}

// validateScoringMode validates the scoring schedule name
func validateScoringMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case tourney.ScoringStandard, tourney.ScoringCalcutta, tourney.ScoringCustom:
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Tournament.ScoringMode == tourney.ScoringCustom && len(cfg.Tournament.CustomScoring) == 0 {
		return fmt.Errorf("custom scoring_mode requires custom_scoring weights")
	}
	if cfg.Tournament.ScoringMode != tourney.ScoringCustom && len(cfg.Tournament.CustomScoring) > 0 {
		return fmt.Errorf("custom_scoring is only used with scoring_mode 'custom'")
	}

	// Without ratings every game must be decided by an override
	if cfg.Inputs.Ratings == "" && len(cfg.Inputs.Overrides) == 0 {
		return fmt.Errorf("inputs.ratings is required unless override files are given")
	}
	if cfg.Inputs.Ratings == "" && len(cfg.Inputs.Adjustments) > 0 {
		return fmt.Errorf("inputs.adjustments requires inputs.ratings")
	}

	if cfg.Metrics.Enabled && (cfg.Metrics.Port == 0 || cfg.Metrics.Path == "") {
		return fmt.Errorf("metrics.enabled requires metrics.port and metrics.path")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "sortmode":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: name, score, got '%v'\n", field, value)
		case "scoringmode":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: standard, calcutta, custom, got '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() && cfg.App.LogLevel == "debug" {
		return fmt.Errorf("production environment should not log at debug level")
	}
	return nil
}
