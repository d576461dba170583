package strategy

import (
	"fmt"

	"github.com/cinar/indicator"

	"quantbt/internal/types"
)

// SMACrossover buys when the fast moving average crosses above the slow
// one and sells the position when it crosses back below.
type SMACrossover struct{}

// NewSMACrossover creates a new SMA crossover strategy
func NewSMACrossover() *SMACrossover {
	return &SMACrossover{}
}

// Name returns the registry name of the strategy
func (s *SMACrossover) Name() string {
	return "sma_crossover"
}

// ParameterRanges declares the tunable moving-average periods
func (s *SMACrossover) ParameterRanges() map[string]Range {
	return map[string]Range{
		"fast_period":     {Min: 5, Max: 20, Step: 5},
		"slow_period":     {Min: 20, Max: 60, Step: 20},
		"percent_capital": {Min: 20, Max: 40, Step: 20},
	}
}

// GetSignals emits a buy on a golden cross and a sell on a death cross of
// the latest bar. Bars before the slow period warm-up produce no signals.
func (s *SMACrossover) GetSignals(bars []types.PriceBar, params map[string]float64) []types.Signal {
	fast := int(paramOr(params, "fast_period", 10))
	slow := int(paramOr(params, "slow_period", 40))
	percent := paramOr(params, "percent_capital", 20)
	if fast <= 0 || slow <= fast || len(bars) == 0 {
		return nil
	}

	symbol := bars[len(bars)-1].Symbol
	own := symbolBars(bars, symbol)
	if len(own) < slow+1 {
		return nil
	}

	closes := types.Closes(own)
	fastSMA := indicator.Sma(fast, closes)
	slowSMA := indicator.Sma(slow, closes)

	n := len(closes)
	prevDiff := fastSMA[n-2] - slowSMA[n-2]
	currDiff := fastSMA[n-1] - slowSMA[n-1]

	if prevDiff <= 0 && currDiff > 0 {
		return []types.Signal{types.NewBuySignal(
			symbol, types.SizingPercentCapital, percent,
			fmt.Sprintf("golden cross: sma(%d) above sma(%d)", fast, slow),
		)}
	}
	if prevDiff >= 0 && currDiff < 0 {
		return []types.Signal{types.NewSellSignal(
			symbol,
			fmt.Sprintf("death cross: sma(%d) below sma(%d)", fast, slow),
		)}
	}
	return nil
}
