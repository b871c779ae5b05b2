package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// parseEnv overlays cfg with values from VOTEKEEPER_* environment variables.
// Only variables that are actually set override earlier values; this is where
// secrets (VOTEKEEPER_MASTER_KEY, VOTEKEEPER_SMTP_PASSWORD) usually come from.
func parseEnv(cfg *Config) error {
	if err := envconfig.Process("votekeeper", cfg); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	return nil
}
