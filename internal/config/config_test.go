package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "equity.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
simulation {
  players        = 6
  trials         = 50000
  timeout        = "2s"
  range_fraction = 0.25
  range_file     = "ranges.yaml"
  workers        = 4
  seed           = 99
}

log {
  level = "debug"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	s := cfg.Simulation
	assert.Equal(t, 6, s.Players)
	assert.Equal(t, 50000, s.Trials)
	assert.Equal(t, 0.25, s.RangeFraction)
	assert.Equal(t, "ranges.yaml", s.RangeFile)
	assert.Equal(t, 4, s.Workers)
	assert.Equal(t, int64(99), s.Seed)
	assert.Equal(t, int64(DefaultPassThreshold), s.PassThreshold, "unset values keep defaults")
	assert.Equal(t, log.DebugLevel, cfg.LogLevel())

	timeout, err := s.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, timeout)
}

func TestLoadPartialFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `log { level = "warn" }`))
	require.NoError(t, err)
	assert.Equal(t, Default().Simulation, cfg.Simulation)
	assert.Equal(t, log.WarnLevel, cfg.LogLevel())
}

func TestLoadInvalidHCL(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `simulation { players = `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")

	_, err = Load(writeConfig(t, `simulation { players = "many" }`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"one player", func(c *Config) { c.Simulation.Players = 1 }, "players"},
		{"too many players", func(c *Config) { c.Simulation.Players = 24 }, "players"},
		{"no trials", func(c *Config) { c.Simulation.Trials = 0 }, "trials"},
		{"bad timeout", func(c *Config) { c.Simulation.Timeout = "soon" }, "invalid timeout"},
		{"negative timeout", func(c *Config) { c.Simulation.Timeout = "-1s" }, "timeout"},
		{"zero fraction", func(c *Config) { c.Simulation.RangeFraction = 0 }, "range_fraction"},
		{"fraction above one", func(c *Config) { c.Simulation.RangeFraction = 1.1 }, "range_fraction"},
		{"no workers", func(c *Config) { c.Simulation.Workers = 0 }, "workers"},
		{"negative threshold", func(c *Config) { c.Simulation.PassThreshold = -1 }, "pass_threshold"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTimeoutDisabled(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"", "0"} {
		d, err := SimulationSettings{Timeout: v}.TimeoutDuration()
		require.NoError(t, err)
		assert.Zero(t, d)
	}
}
