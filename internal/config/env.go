package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from the environment. Empty values are unset.
type EnvConfig struct {
	Subject    string `env:"SPACE_DEFENSE_SUBJECT"`
	ExportDir  string `env:"SPACE_DEFENSE_EXPORT_DIR"`
	LevelsFile string `env:"SPACE_DEFENSE_LEVELS_FILE"`
	// DebugLog is a file path for the TUI debug log.
	DebugLog string `env:"SPACE_DEFENSE_DEBUG"`
}

// LoadEnv reads overrides from the process environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse env: %w", err)
	}
	return cfg, nil
}

// LoadEnvFrom reads overrides from the given variables instead of the
// process environment.
func LoadEnvFrom(vars map[string]string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse env: %w", err)
	}
	return cfg, nil
}
