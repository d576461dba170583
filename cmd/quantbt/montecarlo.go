package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantbt/internal/backtest"
	"quantbt/internal/strategy"
)

func newMonteCarloCmd() *cobra.Command {
	var iterations, workers int
	var seed int64

	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "Run Monte Carlo simulation over resampled data",
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

			mcConfig := &backtest.MonteCarloConfig{
				Iterations: cfg.MonteCarlo.Iterations,
				Seed:       cfg.MonteCarlo.Seed,
				Workers:    cfg.MonteCarlo.Workers,
			}
			if iterations > 0 {
				mcConfig.Iterations = iterations
			}
			if workers > 0 {
				mcConfig.Workers = workers
			}
			if cmd.Flags().Changed("seed") {
				mcConfig.Seed = seed
			}

			runner := backtest.NewMonteCarloRunner(mcConfig, engineConfig(cfg), sizerConfig(cfg))
			result, err := runner.Run(cmd.Context(), bars, strat, cfg.Strategy.Params)
			if err != nil {
				return err
			}

			fmt.Printf("\nMonte Carlo (%s, %d iterations)\n", strat.Name(), result.Iterations)
			fmt.Printf("  Mean return:     %+.2f%%\n", result.MeanReturn*100)
			fmt.Printf("  Std deviation:   %.2f%%\n", result.StdDev*100)
			fmt.Printf("  P(loss):         %.1f%%\n", result.ProbabilityOfLoss*100)
			fmt.Printf("  Worst / best:    %+.2f%% / %+.2f%%\n", result.WorstCase*100, result.BestCase*100)
			for _, pct := range []int{5, 25, 50, 75, 95} {
				fmt.Printf("  p%-2d:             %+.2f%%\n", pct, result.Percentiles[pct]*100)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "override the iteration count")
	cmd.Flags().IntVar(&workers, "workers", 0, "override the worker count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override the base RNG seed")
	return cmd
}
