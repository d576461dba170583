package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantbt/internal/backtest"
	"quantbt/internal/strategy"
)

func newWalkForwardCmd() *cobra.Command {
	var trainBars, testBars, stepBars int

	cmd := &cobra.Command{
		Use:   "walkforward",
		Short: "Run walk-forward parameter analysis",
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

			wfConfig := &backtest.WalkForwardConfig{
				TrainBars:     cfg.WalkForward.TrainBars,
				TestBars:      cfg.WalkForward.TestBars,
				StepBars:      cfg.WalkForward.StepBars,
				MaxCandidates: cfg.WalkForward.MaxCandidates,
				Seed:          cfg.WalkForward.Seed,
			}
			if trainBars > 0 {
				wfConfig.TrainBars = trainBars
			}
			if testBars > 0 {
				wfConfig.TestBars = testBars
			}
			if stepBars > 0 {
				wfConfig.StepBars = stepBars
			}

			runner := backtest.NewWalkForwardRunner(wfConfig, engineConfig(cfg), sizerConfig(cfg))
			result, err := runner.Run(cmd.Context(), bars, strat)
			if err != nil {
				return err
			}

			fmt.Printf("\nWalk-forward analysis (%s, %d windows)\n", strat.Name(), len(result.Windows))
			for _, w := range result.Windows {
				fmt.Printf("  window %d [%d:%d|%d:%d] return %+.2f%% sharpe %.3f drawdown %.2f%% params %v\n",
					w.Window, w.TrainStart, w.TrainEnd, w.TestStart, w.TestEnd,
					w.TestReturn*100, w.TestSharpe, w.TestDrawdown*100, w.BestParams)
			}
			fmt.Printf("  Avg test return: %+.2f%%\n", result.AvgTestReturn*100)
			fmt.Printf("  Avg test sharpe: %.3f\n", result.AvgTestSharpe)
			fmt.Printf("  Consistency:     %.0f%%\n", result.Consistency*100)
			return nil
		},
	}

	cmd.Flags().IntVar(&trainBars, "train", 0, "override train window size in bars")
	cmd.Flags().IntVar(&testBars, "test", 0, "override test window size in bars")
	cmd.Flags().IntVar(&stepBars, "step", 0, "override window step in bars")
	return cmd
}
