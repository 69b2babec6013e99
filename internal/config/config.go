package config

import (
	"os"

	"regimescope/domain/regime"
	"regimescope/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Logging  LoggingConfig
}

// AnalysisConfig holds regime-analysis runtime settings
type AnalysisConfig struct {
	// FailurePolicy decides whether a collaborator failure aborts the run
	// or skips the offending window
	FailurePolicy regime.FailurePolicy
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from the environment (and an optional .env file)
// and validates it
func Load() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	config := &Config{
		Analysis: AnalysisConfig{
			FailurePolicy: loadFailurePolicy(),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadFailurePolicy() regime.FailurePolicy {
	raw := getEnvOrDefault("REGIME_FAILURE_POLICY", string(regime.SkipWindow))
	return regime.FailurePolicy(raw)
}

func validateConfig(config *Config) error {
	if !config.Analysis.FailurePolicy.Valid() {
		return errors.ConfigInvalid("REGIME_FAILURE_POLICY must be fail_run or skip_window")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
