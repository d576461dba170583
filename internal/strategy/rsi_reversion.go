package strategy

import (
	"fmt"

	"github.com/cinar/indicator"

	"quantbt/internal/types"
)

// RSIReversion buys when RSI drops into the oversold zone and sells the
// position when it rises into the overbought zone. Signals fire only on
// the bar where the threshold is crossed, not on every bar inside a zone.
type RSIReversion struct{}

// NewRSIReversion creates a new RSI mean-reversion strategy
func NewRSIReversion() *RSIReversion {
	return &RSIReversion{}
}

// Name returns the registry name of the strategy
func (s *RSIReversion) Name() string {
	return "rsi_reversion"
}

// ParameterRanges declares the tunable RSI thresholds
func (s *RSIReversion) ParameterRanges() map[string]Range {
	return map[string]Range{
		"oversold":        {Min: 20, Max: 35, Step: 5},
		"overbought":      {Min: 65, Max: 80, Step: 5},
		"percent_capital": {Min: 20, Max: 40, Step: 20},
	}
}

// rsiWarmup is the minimum bar count before RSI values are meaningful
const rsiWarmup = 15

// GetSignals emits a buy when RSI crosses below the oversold threshold and
// a sell when it crosses above the overbought threshold on the latest bar.
func (s *RSIReversion) GetSignals(bars []types.PriceBar, params map[string]float64) []types.Signal {
	oversold := paramOr(params, "oversold", 30)
	overbought := paramOr(params, "overbought", 70)
	percent := paramOr(params, "percent_capital", 20)
	if len(bars) == 0 || oversold >= overbought {
		return nil
	}

	symbol := bars[len(bars)-1].Symbol
	own := symbolBars(bars, symbol)
	if len(own) < rsiWarmup+1 {
		return nil
	}

	_, rsi := indicator.Rsi(types.Closes(own))
	n := len(rsi)
	prev, curr := rsi[n-2], rsi[n-1]

	if prev >= oversold && curr < oversold {
		return []types.Signal{types.NewBuySignal(
			symbol, types.SizingPercentCapital, percent,
			fmt.Sprintf("rsi %.1f crossed below oversold %.0f", curr, oversold),
		)}
	}
	if prev <= overbought && curr > overbought {
		return []types.Signal{types.NewSellSignal(
			symbol,
			fmt.Sprintf("rsi %.1f crossed above overbought %.0f", curr, overbought),
		)}
	}
	return nil
}
