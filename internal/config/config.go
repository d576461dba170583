// Package config defines the application configuration, loaded from JSON
// or YAML files with defaults for everything left unset.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// dateLayout is the accepted format for date fields
const dateLayout = "2006-01-02"

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `json:"app" yaml:"app"`
	Data        DataConfig        `json:"data" yaml:"data"`
	Backtest    BacktestConfig    `json:"backtest" yaml:"backtest"`
	Sizing      SizingConfig      `json:"sizing" yaml:"sizing"`
	Strategy    StrategyConfig    `json:"strategy" yaml:"strategy"`
	WalkForward WalkForwardConfig `json:"walk_forward" yaml:"walk_forward"`
	MonteCarlo  MonteCarloConfig  `json:"monte_carlo" yaml:"monte_carlo"`
	Logging     LoggingConfig     `json:"logging" yaml:"logging"`
}

// AppConfig contains basic application configuration
type AppConfig struct {
	Name        string `json:"name" yaml:"name"`
	Environment string `json:"environment" yaml:"environment"` // "development", "production", "test"
	Debug       bool   `json:"debug" yaml:"debug"`
}

// DataConfig contains historical data configuration
type DataConfig struct {
	Directory string   `json:"directory" yaml:"directory"`
	Symbols   []string `json:"symbols" yaml:"symbols"`
	StartDate string   `json:"start_date" yaml:"start_date"` // "2006-01-02", empty = unbounded
	EndDate   string   `json:"end_date" yaml:"end_date"`
	Timeframe string   `json:"timeframe" yaml:"timeframe"` // "1d", "1w", "1M"
}

// StartTime parses the configured start date; zero when unset
func (d DataConfig) StartTime() (time.Time, error) {
	return parseDate(d.StartDate)
}

// EndTime parses the configured end date; zero when unset
func (d DataConfig) EndTime() (time.Time, error) {
	return parseDate(d.EndDate)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// BacktestConfig contains backtest engine configuration
type BacktestConfig struct {
	InitialCapital   float64 `json:"initial_capital" yaml:"initial_capital"`
	Commission       float64 `json:"commission" yaml:"commission"`
	Slippage         float64 `json:"slippage" yaml:"slippage"`
	PeriodsPerYear   int     `json:"periods_per_year" yaml:"periods_per_year"`
	RiskFreeRate     float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	VaRConfidence    float64 `json:"var_confidence" yaml:"var_confidence"`
	VolatilityWindow int     `json:"volatility_window" yaml:"volatility_window"`
	ResultsDirectory string  `json:"results_directory" yaml:"results_directory"`
	ExportResults    bool    `json:"export_results" yaml:"export_results"`
}

// SizingConfig contains position sizing configuration
type SizingConfig struct {
	KellyCap         float64 `json:"kelly_cap" yaml:"kelly_cap"`
	BaseFraction     float64 `json:"base_fraction" yaml:"base_fraction"`
	TargetVolatility float64 `json:"target_volatility" yaml:"target_volatility"`
	MaxFraction      float64 `json:"max_fraction" yaml:"max_fraction"`
}

// StrategyConfig selects the strategy and its fixed parameters
type StrategyConfig struct {
	Name   string             `json:"name" yaml:"name"`
	Params map[string]float64 `json:"params" yaml:"params"`
}

// WalkForwardConfig contains walk-forward analysis configuration
type WalkForwardConfig struct {
	TrainBars     int   `json:"train_bars" yaml:"train_bars"`
	TestBars      int   `json:"test_bars" yaml:"test_bars"`
	StepBars      int   `json:"step_bars" yaml:"step_bars"`
	MaxCandidates int   `json:"max_candidates" yaml:"max_candidates"`
	Seed          int64 `json:"seed" yaml:"seed"`
}

// MonteCarloConfig contains Monte Carlo simulation configuration
type MonteCarloConfig struct {
	Iterations int   `json:"iterations" yaml:"iterations"`
	Seed       int64 `json:"seed" yaml:"seed"`
	Workers    int   `json:"workers" yaml:"workers"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level     string `json:"level" yaml:"level"`   // "debug", "info", "warn", "error"
	Format    string `json:"format" yaml:"format"` // "json", "text"
	Output    string `json:"output" yaml:"output"` // "stdout", "file", "both"
	Directory string `json:"directory" yaml:"directory"`

	// File rotation
	MaxSize    int  `json:"max_size" yaml:"max_size"`       // Max MB per file
	MaxBackups int  `json:"max_backups" yaml:"max_backups"` // Max number of old files
	MaxAge     int  `json:"max_age" yaml:"max_age"`         // Max days to retain
	Compress   bool `json:"compress" yaml:"compress"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "quantbt",
			Environment: "development",
			Debug:       false,
		},
		Data: DataConfig{
			Directory: "./data",
			Symbols:   []string{"SPY"},
			Timeframe: "1d",
		},
		Backtest: BacktestConfig{
			InitialCapital:   100000,
			Commission:       0.001,
			Slippage:         0.0005,
			PeriodsPerYear:   252,
			RiskFreeRate:     0.02,
			VaRConfidence:    0.95,
			VolatilityWindow: 20,
			ResultsDirectory: "./results",
			ExportResults:    true,
		},
		Sizing: SizingConfig{
			KellyCap:         0.25,
			BaseFraction:     0.10,
			TargetVolatility: 0.02,
			MaxFraction:      1.0,
		},
		Strategy: StrategyConfig{
			Name:   "sma_crossover",
			Params: map[string]float64{},
		},
		WalkForward: WalkForwardConfig{
			TrainBars:     252,
			TestBars:      63,
			StepBars:      63,
			MaxCandidates: 24,
			Seed:          1,
		},
		MonteCarlo: MonteCarloConfig{
			Iterations: 500,
			Seed:       1,
			Workers:    runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			Directory:  "./logs",
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by the
// file extension. A missing file is created with the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaults := DefaultConfig()
		if err := SaveConfig(defaults, configPath); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		return defaults, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// start from defaults so omitted sections keep sane values
	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to a file, JSON or YAML by extension
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if len(c.Data.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	start, err := c.Data.StartTime()
	if err != nil {
		return err
	}
	end, err := c.Data.EndTime()
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", c.Data.EndDate, c.Data.StartDate)
	}

	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive")
	}
	if c.Backtest.Commission < 0 || c.Backtest.Slippage < 0 {
		return fmt.Errorf("commission and slippage must be non-negative")
	}
	if c.Backtest.VaRConfidence <= 0 || c.Backtest.VaRConfidence >= 1 {
		return fmt.Errorf("VaR confidence must be in (0, 1)")
	}

	if c.Sizing.MaxFraction <= 0 || c.Sizing.MaxFraction > 1 {
		return fmt.Errorf("max fraction must be in (0, 1]")
	}
	if c.Sizing.KellyCap < 0 || c.Sizing.KellyCap > 1 {
		return fmt.Errorf("kelly cap must be in [0, 1]")
	}

	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy name is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	return nil
}
