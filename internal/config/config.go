package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds fly's tunable settings from config.yaml.
type Config struct {
	// DBPath overrides the index database location.
	DBPath string `yaml:"db_path"`

	// LogLevel sets console verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// FuzzyLimit caps how many near-match basenames a missed query surfaces.
	FuzzyLimit int `yaml:"fuzzy_limit"`

	// DefaultPriority is assigned to roots registered without an explicit one.
	DefaultPriority int `yaml:"default_priority"`
}

// DefaultConfig returns a Config with the stock values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		FuzzyLimit:      5,
		DefaultPriority: 100,
	}
}

// LoadConfig reads config.yaml from path, merging file values over the
// defaults. A missing file yields the defaults without error; a
// malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if fileCfg.DBPath != "" {
		cfg.DBPath = fileCfg.DBPath
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.FuzzyLimit > 0 {
		cfg.FuzzyLimit = fileCfg.FuzzyLimit
	}
	if fileCfg.DefaultPriority > 0 {
		cfg.DefaultPriority = fileCfg.DefaultPriority
	}
	return cfg, nil
}
