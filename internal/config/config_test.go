package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigCreatesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "quantbt", cfg.App.Name)

	// the file was written so the next load reads it back
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadConfigJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Backtest.InitialCapital = 50000
	cfg.Strategy.Name = "rsi_reversion"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, loaded.Backtest.InitialCapital)
	assert.Equal(t, "rsi_reversion", loaded.Strategy.Name)
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
backtest:
  initial_capital: 25000
  commission: 0.002
data:
  symbols: [AAPL, MSFT]
  start_date: "2024-01-02"
strategy:
  name: sma_crossover
  params:
    fast_period: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.002, cfg.Backtest.Commission)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Data.Symbols)
	assert.Equal(t, 10.0, cfg.Strategy.Params["fast_period"])

	// omitted sections keep defaults
	assert.Equal(t, 252, cfg.Backtest.PeriodsPerYear)
	assert.Equal(t, "info", cfg.Logging.Level)

	start, err := cfg.Data.StartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), start)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"zero capital":       func(c *Config) { c.Backtest.InitialCapital = 0 },
		"negative commission": func(c *Config) { c.Backtest.Commission = -0.01 },
		"var confidence 1":   func(c *Config) { c.Backtest.VaRConfidence = 1 },
		"no symbols":         func(c *Config) { c.Data.Symbols = nil },
		"no strategy":        func(c *Config) { c.Strategy.Name = "" },
		"bad log level":      func(c *Config) { c.Logging.Level = "verbose" },
		"bad log format":     func(c *Config) { c.Logging.Format = "xml" },
		"bad date":           func(c *Config) { c.Data.StartDate = "02/01/2024" },
		"inverted dates": func(c *Config) {
			c.Data.StartDate = "2024-06-01"
			c.Data.EndDate = "2024-01-01"
		},
		"max fraction > 1": func(c *Config) { c.Sizing.MaxFraction = 1.5 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
