// Package config loads simulator settings from an HCL file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

const (
	DefaultPlayers       = 8
	DefaultTrials        = 20000
	DefaultTimeout       = "10s"
	DefaultRangeFraction = 1.0
	DefaultWorkers       = 1
	DefaultPassThreshold = 10000
	DefaultLogLevel      = "info"
)

// Config represents the complete simulator configuration
type Config struct {
	Simulation SimulationSettings `hcl:"simulation,block"`
	Log        LogSettings        `hcl:"log,block"`
}

// SimulationSettings are the defaults for a run
type SimulationSettings struct {
	Players       int     `hcl:"players,optional"`
	Trials        int     `hcl:"trials,optional"`
	Timeout       string  `hcl:"timeout,optional"`
	RangeFraction float64 `hcl:"range_fraction,optional"`
	RangeFile     string  `hcl:"range_file,optional"`
	Workers       int     `hcl:"workers,optional"`
	Seed          int64   `hcl:"seed,optional"`
	PassThreshold int64   `hcl:"pass_threshold,optional"`
}

// LogSettings configures the CLI logger
type LogSettings struct {
	Level string `hcl:"level,optional"`
}

// fileConfig mirrors Config with optional blocks so a file may omit either
type fileConfig struct {
	Simulation *SimulationSettings `hcl:"simulation,block"`
	Log        *LogSettings        `hcl:"log,block"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Simulation: SimulationSettings{
			Players:       DefaultPlayers,
			Trials:        DefaultTrials,
			Timeout:       DefaultTimeout,
			RangeFraction: DefaultRangeFraction,
			Workers:       DefaultWorkers,
			PassThreshold: DefaultPassThreshold,
		},
		Log: LogSettings{Level: DefaultLogLevel},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := Default()
	if raw.Simulation != nil {
		config.Simulation.merge(*raw.Simulation)
	}
	if raw.Log != nil && raw.Log.Level != "" {
		config.Log.Level = raw.Log.Level
	}
	return config, nil
}

// merge copies every value set in other over s. Zero means unset.
func (s *SimulationSettings) merge(other SimulationSettings) {
	if other.Players != 0 {
		s.Players = other.Players
	}
	if other.Trials != 0 {
		s.Trials = other.Trials
	}
	if other.Timeout != "" {
		s.Timeout = other.Timeout
	}
	if other.RangeFraction != 0 {
		s.RangeFraction = other.RangeFraction
	}
	if other.RangeFile != "" {
		s.RangeFile = other.RangeFile
	}
	if other.Workers != 0 {
		s.Workers = other.Workers
	}
	if other.Seed != 0 {
		s.Seed = other.Seed
	}
	if other.PassThreshold != 0 {
		s.PassThreshold = other.PassThreshold
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	s := c.Simulation
	if s.Players < 2 || s.Players > 23 {
		return fmt.Errorf("players must be between 2 and 23, got %d", s.Players)
	}
	if s.Trials < 1 {
		return fmt.Errorf("trials must be positive, got %d", s.Trials)
	}
	if _, err := s.TimeoutDuration(); err != nil {
		return err
	}
	if !(s.RangeFraction > 0 && s.RangeFraction <= 1) {
		return fmt.Errorf("range_fraction must be in (0, 1], got %v", s.RangeFraction)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", s.Workers)
	}
	if s.PassThreshold < 0 {
		return fmt.Errorf("pass_threshold must not be negative, got %d", s.PassThreshold)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// TimeoutDuration parses the timeout. An empty or "0" timeout disables the
// deadline and returns zero.
func (s SimulationSettings) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" || s.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative, got %s", d)
	}
	return d, nil
}

// LogLevel returns the parsed log level, falling back to info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
