// Package model defines shared data structures.
package model

import "time"

// Level is one reinforcement contingency: a label shown to the experimenter,
// the probability that a qualifying shot fires, and the core colour tag.
type Level struct {
	Label       string  `toml:"label" yaml:"label"`
	Probability float64 `toml:"p" yaml:"p"`
	Color       string  `toml:"color" yaml:"color"`
}

// RoundConfig is one entry of a generated schedule.
type RoundConfig struct {
	Label       string
	Probability float64
	Color       string
}

// RoundSpec is everything a single round needs from the enclosing flow.
type RoundSpec struct {
	RoundConfig
	// Index is the TrialNum column: 0 for practice, 1..N for scheduled rounds.
	Index    int
	Practice bool
	Duration time.Duration
}

// Config defines session settings resolved from flags, env and config file.
type Config struct {
	Subject      string
	Levels       []Level
	Repeats      int
	RoundSeconds float64
	Practice     bool
	ExportDir    string
}

// RoundDuration converts RoundSeconds to a duration.
func (c Config) RoundDuration() time.Duration {
	return time.Duration(c.RoundSeconds * float64(time.Second))
}

// DefaultLevels returns the six standard contingencies.
func DefaultLevels() []Level {
	return []Level{
		{Label: "100%", Probability: 1.0, Color: "#4aa3ff"},
		{Label: "80%", Probability: 0.80, Color: "#35d07f"},
		{Label: "60%", Probability: 0.60, Color: "#ffd166"},
		{Label: "50%", Probability: 0.50, Color: "#ffb703"},
		{Label: "40%", Probability: 0.40, Color: "#ff7a59"},
		{Label: "20%", Probability: 0.20, Color: "#b983ff"},
	}
}
