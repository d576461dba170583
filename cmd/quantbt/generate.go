package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"quantbt/internal/data"
)

func newGenerateCmd() *cobra.Command {
	var days int
	var seed int64
	var initialPrice, volatility, drift float64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic CSV data for the configured symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			start, err := cfg.Data.StartTime()
			if err != nil {
				return err
			}
			if start.IsZero() {
				start = time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
			}

			for i, symbol := range cfg.Data.Symbols {
				gen := data.NewGenerator(data.GeneratorConfig{
					InitialPrice: initialPrice,
					Volatility:   volatility,
					Drift:        drift,
					Seed:         seed + int64(i),
				})
				bars := gen.Bars(symbol, start, days)
				path := filepath.Join(cfg.Data.Directory, symbol+".csv")
				if err := data.WriteCSV(path, bars); err != nil {
					return err
				}
				fmt.Printf("Wrote %d bars to %s\n", len(bars), path)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 504, "number of daily bars to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "base RNG seed, incremented per symbol")
	cmd.Flags().Float64Var(&initialPrice, "price", 100, "initial price")
	cmd.Flags().Float64Var(&volatility, "volatility", 0.02, "daily return standard deviation")
	cmd.Flags().Float64Var(&drift, "drift", 0.0003, "daily mean return")
	return cmd
}
