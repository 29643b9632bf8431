// Package config provides configuration management for the leapcheck CLI.
//
// Values are layered with koanf: built-in defaults, then leapcheck.yaml,
// then LEAPCHECK_* environment variables, then explicitly set flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	Workers       int           `koanf:"workers"`
	LogDir        string        `koanf:"log_dir"`
	OutputFormat  string        `koanf:"output"`
	Verbose       bool          `koanf:"verbose"`
	StatePath     string        `koanf:"state_path"`
	History       bool          `koanf:"history"`
	MaxSamples    int           `koanf:"max_samples"`
	FailOn        string        `koanf:"fail_on"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
	Source        SourceConfig  `koanf:"source"`
}

// SourceConfig holds dataset source overrides. Empty fields mean "detect".
type SourceConfig struct {
	Kind      string `koanf:"kind"`
	Sheet     string `koanf:"sheet"`
	Delimiter string `koanf:"delimiter"`
	Table     string `koanf:"table"`
}

// Default configuration values.
const (
	DefaultStateFile     = ".leapcheck/state.db"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultFailOn        = "error"
	DefaultMaxSamples    = 5
	DefaultWatchDebounce = 200 * time.Millisecond
	DefaultHistoryLimit  = 20
)

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		OutputFormat:  DefaultOutput,
		StatePath:     DefaultStateFile,
		History:       true,
		MaxSamples:    DefaultMaxSamples,
		FailOn:        DefaultFailOn,
		WatchDebounce: DefaultWatchDebounce,
	}
}
