package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no symbol", func(c *Config) { c.Symbol = "" }},
		{"zero drawdown", func(c *Config) { c.Kill.MaxDrawdownPct = 0 }},
		{"zero cooldown", func(c *Config) { c.Kill.CooldownSeconds = 0 }},
		{"alpha one", func(c *Config) { c.Stop.Alpha = 1.0 }},
		{"soft above critical", func(c *Config) { c.Feedback.SoftRejectRatio = 0.9 }},
		{"throttle floor zero", func(c *Config) { c.Feedback.MinThrottle = 0 }},
		{"bad journal type", func(c *Config) { c.Journal.Type = "parquet" }},
		{"csv without file", func(c *Config) { c.Journal.Type = "csv" }},
		{"partial ratio above one", func(c *Config) { c.Exit.PartialCloseRatio = 1.5 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")

	cfg := Default()
	cfg.Symbol = "EURUSD"
	cfg.NDS.MinVWAPDev = 0.004
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", got.Symbol)
	assert.InDelta(t, 0.004, got.NDS.MinVWAPDev, 1e-12)
	assert.Equal(t, cfg.Kill.CooldownSeconds, got.Kill.CooldownSeconds)
}

func TestLoadJSONFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"symbol":"BTCUSD"}`), 0644))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSD", got.Symbol)
	// unset sections keep defaults
	assert.Equal(t, 3, got.Kill.MaxRejections)
}
