// Command quantbt backtests trading strategies over historical CSV data
// and reports performance, walk-forward and Monte Carlo statistics.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"quantbt/internal/backtest"
	"quantbt/internal/config"
	"quantbt/internal/data"
	"quantbt/internal/logging"
	"quantbt/internal/sizing"
	"quantbt/internal/strategy"
	"quantbt/internal/types"
)

var (
	configPath   string
	dataDir      string
	symbols      []string
	strategyName string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quantbt",
		Short: "Historical backtesting engine for trading strategies",
		Long: `quantbt runs trading strategies over historical OHLCV data with
realistic execution costs and reports risk-adjusted performance,
walk-forward analysis and Monte Carlo return distributions.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "override the data directory")
	rootCmd.PersistentFlags().StringSliceVar(&symbols, "symbols", nil, "override the configured symbols")
	rootCmd.PersistentFlags().StringVarP(&strategyName, "strategy", "s", "", "override the configured strategy")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newWalkForwardCmd())
	rootCmd.AddCommand(newMonteCarloCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newStrategiesCmd())

	ctx, stop := signal.NotifyContext(rootCmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available strategies",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(strings.Join(strategy.Names(), "\n"))
		},
	}
}

// setup loads configuration, applies flag overrides and initializes
// logging. Every subcommand starts here.
func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.Data.Directory = dataDir
	}
	if len(symbols) > 0 {
		cfg.Data.Symbols = symbols
	}
	if strategyName != "" {
		cfg.Strategy.Name = strategyName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.InitGlobalLogger(cfg.Logging)
	return cfg, nil
}

// loadBars reads and optionally resamples the configured historical data
func loadBars(cfg *config.Config) ([]types.PriceBar, error) {
	start, err := cfg.Data.StartTime()
	if err != nil {
		return nil, err
	}
	end, err := cfg.Data.EndTime()
	if err != nil {
		return nil, err
	}

	loader := data.NewLoader(data.LoaderConfig{
		Directory: cfg.Data.Directory,
		StartTime: start,
		EndTime:   end,
	})
	bars, err := loader.Load(cfg.Data.Symbols)
	if err != nil {
		return nil, err
	}

	if cfg.Data.Timeframe != "" && cfg.Data.Timeframe != string(data.TimeframeDaily) {
		bars, err = data.Resample(bars, data.Timeframe(cfg.Data.Timeframe))
		if err != nil {
			return nil, err
		}
	}
	return bars, nil
}

// engineConfig maps the file configuration onto the engine's own config
func engineConfig(cfg *config.Config) *backtest.Config {
	return &backtest.Config{
		InitialCapital:   cfg.Backtest.InitialCapital,
		Commission:       cfg.Backtest.Commission,
		Slippage:         cfg.Backtest.Slippage,
		PeriodsPerYear:   cfg.Backtest.PeriodsPerYear,
		RiskFreeRate:     cfg.Backtest.RiskFreeRate,
		VaRConfidence:    cfg.Backtest.VaRConfidence,
		VolatilityWindow: cfg.Backtest.VolatilityWindow,
	}
}

func sizerConfig(cfg *config.Config) sizing.Config {
	return sizing.Config{
		KellyCap:         cfg.Sizing.KellyCap,
		BaseFraction:     cfg.Sizing.BaseFraction,
		TargetVolatility: cfg.Sizing.TargetVolatility,
		MaxFraction:      cfg.Sizing.MaxFraction,
	}
}
