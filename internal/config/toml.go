// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/megancady/Space-Defense-Pilot/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Session SessionConfig `toml:"session"`
	Levels  []model.Level `toml:"levels"`
}

// SessionConfig maps session-related settings.
type SessionConfig struct {
	Repeats      *int     `toml:"repeats"`
	RoundSeconds *float64 `toml:"round-seconds"`
	Practice     *bool    `toml:"practice"`
	ExportDir    *string  `toml:"export-dir"`
	LevelsFile   *string  `toml:"levels-file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
