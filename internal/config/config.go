package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all match configuration
type Config struct {
	// Board
	Layout string `mapstructure:"layout"` // path to a layout file; empty uses the built-in maze

	// Team composition, by registry name
	RedFirst   string `mapstructure:"red_first"`
	RedSecond  string `mapstructure:"red_second"`
	BlueFirst  string `mapstructure:"blue_first"`
	BlueSecond string `mapstructure:"blue_second"`

	// Match limits
	MaxMoves     int           `mapstructure:"max_moves"`
	MoveTimeout  time.Duration `mapstructure:"move_timeout"`
	SetupTimeout time.Duration `mapstructure:"setup_timeout"`
	MaxWarnings  int           `mapstructure:"max_warnings"`

	// Engine rules
	Seed       int64 `mapstructure:"seed"` // 0 seeds from the clock
	SightRange int   `mapstructure:"sight_range"`

	// Agent tuning
	ScaredThreshold int `mapstructure:"scared_threshold"`

	// Decision trace
	TraceCapacity int `mapstructure:"trace_capacity"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		RedFirst:        "nomnom",
		RedSecond:       "offense",
		BlueFirst:       "offense",
		BlueSecond:      "defense",
		MaxMoves:        1200,
		MoveTimeout:     time.Second,
		SetupTimeout:    15 * time.Second,
		MaxWarnings:     3,
		SightRange:      5,
		ScaredThreshold: 2,
		TraceCapacity:   10000,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load overlays values found in v (flags, environment, config file) on top of
// the defaults and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.RedFirst == "" || c.RedSecond == "" {
		return fmt.Errorf("red_first and red_second are required")
	}
	if c.BlueFirst == "" || c.BlueSecond == "" {
		return fmt.Errorf("blue_first and blue_second are required")
	}
	if c.MaxMoves <= 0 {
		return fmt.Errorf("max_moves must be positive")
	}
	if c.MoveTimeout <= 0 {
		return fmt.Errorf("move_timeout must be positive")
	}
	if c.SetupTimeout <= 0 {
		return fmt.Errorf("setup_timeout must be positive")
	}
	if c.MaxWarnings < 0 {
		return fmt.Errorf("max_warnings must not be negative")
	}
	if c.SightRange < 0 {
		return fmt.Errorf("sight_range must not be negative")
	}
	if c.ScaredThreshold < 1 {
		return fmt.Errorf("scared_threshold must be at least 1")
	}
	if c.TraceCapacity < 0 {
		return fmt.Errorf("trace_capacity must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}
