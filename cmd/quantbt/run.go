package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quantbt/internal/backtest"
	"quantbt/internal/logging"
	"quantbt/internal/strategy"
	"quantbt/internal/types"
)

func newRunCmd() *cobra.Command {
	var noExport bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single backtest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			bars, err := loadBars(cfg)
			if err != nil {
				return err
			}
			strat, err := strategy.New(cfg.Strategy.Name)
			if err != nil {
				return err
			}

			engine := backtest.NewEngine(engineConfig(cfg), sizerConfig(cfg))
			result, err := engine.Run(cmd.Context(), bars, strat, cfg.Strategy.Params)
			if err != nil {
				return err
			}

			printResult(result)

			if cfg.Backtest.ExportResults && !noExport {
				files, err := backtest.SaveResult(cfg.Backtest.ResultsDirectory, result)
				if err != nil {
					return fmt.Errorf("exporting results: %w", err)
				}
				logging.Infof("Results written to %s", strings.Join(files, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noExport, "no-export", false, "skip writing result files")
	return cmd
}

func printResult(result *types.BacktestResult) {
	fmt.Printf("\nBacktest %s (%s)\n", result.RunID, result.Strategy)
	fmt.Printf("  Bars:              %d\n", result.BarCount)
	fmt.Printf("  Trades:            %d (%d wins / %d losses)\n",
		result.TotalTrades, result.WinningTrades, result.LosingTrades)
	fmt.Printf("  Total return:      %.2f%% (%.2f)\n", result.TotalReturnPercent, result.TotalReturn)
	fmt.Printf("  Annualized return: %.2f%%\n", result.AnnualizedReturn*100)
	fmt.Printf("  Volatility:        %.2f%%\n", result.Volatility*100)
	fmt.Printf("  Sharpe ratio:      %.3f\n", result.SharpeRatio)
	fmt.Printf("  Sortino ratio:     %.3f\n", result.SortinoRatio)
	fmt.Printf("  Calmar ratio:      %.3f\n", result.CalmarRatio)
	fmt.Printf("  Max drawdown:      %.2f%% over %d bars\n", result.MaxDrawdown*100, result.MaxDrawdownDuration)
	fmt.Printf("  VaR / ES:          %.4f / %.4f\n", result.ValueAtRisk, result.ExpectedShortfall)
	fmt.Printf("  Win rate:          %.1f%%\n", result.WinRate*100)
	fmt.Printf("  Profit factor:     %.3f\n", result.ProfitFactor)
	fmt.Printf("  Commission paid:   %.2f\n", result.TotalCommission)
	fmt.Printf("  Final capital:     %.2f\n", result.FinalCapital)
}
