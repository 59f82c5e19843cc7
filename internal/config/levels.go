package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/megancady/Space-Defense-Pilot/internal/model"
)

type levelsFile struct {
	Levels []model.Level `toml:"levels" yaml:"levels"`
}

// LoadLevels reads a contingency set from a YAML (.yaml, .yml) or TOML
// (.toml) file with a top-level "levels" list.
func LoadLevels(path string) ([]model.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels file: %w", err)
	}
	var file levelsFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse levels YAML: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("failed to parse levels TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported levels file extension %q (use .yaml, .yml or .toml)", ext)
	}
	if err := ValidateLevels(file.Levels); err != nil {
		return nil, fmt.Errorf("invalid levels file %s: %w", path, err)
	}
	return file.Levels, nil
}

// ResolveLevels picks the contingency set: a levels file wins over levels
// inlined in the config, which win over the built-in defaults.
func ResolveLevels(inline []model.Level, path string) ([]model.Level, error) {
	if path != "" {
		return LoadLevels(path)
	}
	if len(inline) > 0 {
		if err := ValidateLevels(inline); err != nil {
			return nil, fmt.Errorf("invalid levels in config: %w", err)
		}
		return inline, nil
	}
	return model.DefaultLevels(), nil
}

// ValidateLevels checks labels and probabilities.
func ValidateLevels(levels []model.Level) error {
	if len(levels) == 0 {
		return fmt.Errorf("levels must not be empty")
	}
	for i, lvl := range levels {
		if strings.TrimSpace(lvl.Label) == "" {
			return fmt.Errorf("level %d: label must not be empty", i+1)
		}
		if lvl.Probability < 0 || lvl.Probability > 1 {
			return fmt.Errorf("level %q: p must be between 0 and 1", lvl.Label)
		}
	}
	return nil
}
