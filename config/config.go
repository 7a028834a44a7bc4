// SPDX-License-Identifier: MIT
// Package: lvgds/config
//
// config.go: YAML configuration for the scheduler, the query runtime and logging.
//
// Design:
//   - Default() is the single source of truth for every knob.
//   - Load/Parse start from Default() so a partial file only overrides what it names.
//   - Validate reports the first violation wrapped in ErrInvalidConfig.

// Package config loads and validates lvgds runtime configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Scheduler modes.
const (
	ModePool   = "pool"
	ModeInline = "inline"
)

// Defaults.
const (
	DefaultSparseFrontierThreshold = 1024
	DefaultArenaBlockCapacity      = 1 << 13
)

// Config is the root of the YAML document.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Query     QueryConfig     `yaml:"query"`
	Log       LogConfig       `yaml:"log"`
}

// SchedulerConfig selects and sizes the task scheduler.
type SchedulerConfig struct {
	Mode                string `yaml:"mode"`                  // "pool" or "inline"
	NumWorkers          int    `yaml:"num_workers"`           // pool size, ignored for inline
	MaxDedicatedWorkers int    `yaml:"max_dedicated_workers"` // extra goroutines for launchNewWorker calls
}

// QueryConfig holds per-query execution limits.
type QueryConfig struct {
	MaxNumThreads           int           `yaml:"max_num_threads"`
	Timeout                 time.Duration `yaml:"timeout"` // 0 disables the timeout
	SparseFrontierThreshold uint64        `yaml:"sparse_frontier_threshold"`
	ResultLimit             uint64        `yaml:"result_limit"` // 0 means unlimited
	ArenaBlockCapacity      int           `yaml:"arena_block_capacity"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Default returns the built-in configuration.
func Default() *Config {
	workers := runtime.GOMAXPROCS(0)
	return &Config{
		Scheduler: SchedulerConfig{
			Mode:                ModePool,
			NumWorkers:          workers,
			MaxDedicatedWorkers: 2 * workers,
		},
		Query: QueryConfig{
			MaxNumThreads:           workers,
			SparseFrontierThreshold: DefaultSparseFrontierThreshold,
			ArenaBlockCapacity:      DefaultArenaBlockCapacity,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes data over Default() and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	switch c.Scheduler.Mode {
	case ModePool:
		if c.Scheduler.NumWorkers <= 0 {
			return fmt.Errorf("%w: scheduler.num_workers must be positive in pool mode (%d)",
				ErrInvalidConfig, c.Scheduler.NumWorkers)
		}
	case ModeInline:
	default:
		return fmt.Errorf("%w: unknown scheduler.mode %q", ErrInvalidConfig, c.Scheduler.Mode)
	}
	if c.Scheduler.MaxDedicatedWorkers < 0 {
		return fmt.Errorf("%w: scheduler.max_dedicated_workers cannot be negative (%d)",
			ErrInvalidConfig, c.Scheduler.MaxDedicatedWorkers)
	}
	if c.Query.MaxNumThreads <= 0 {
		return fmt.Errorf("%w: query.max_num_threads must be positive (%d)",
			ErrInvalidConfig, c.Query.MaxNumThreads)
	}
	if c.Query.Timeout < 0 {
		return fmt.Errorf("%w: query.timeout cannot be negative (%s)", ErrInvalidConfig, c.Query.Timeout)
	}
	if c.Query.ArenaBlockCapacity <= 0 {
		return fmt.Errorf("%w: query.arena_block_capacity must be positive (%d)",
			ErrInvalidConfig, c.Query.ArenaBlockCapacity)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
