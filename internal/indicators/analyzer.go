// Package indicators wraps the Indicator Go library with a rolling
// per-symbol bar store used by strategies and the position sizer.
package indicators

import (
	"github.com/cinar/indicator"

	"quantbt/internal/stats"
	"quantbt/internal/types"
)

// TechnicalAnalyzer stores bar history per symbol and computes technical
// indicator series over it. State is run-local: each backtest run owns its
// own analyzer, so no locking is needed.
type TechnicalAnalyzer struct {
	config AnalyzerConfig
	data   map[string]*symbolData
}

type symbolData struct {
	bars []types.PriceBar
}

// AnalyzerConfig holds configuration for technical analysis
type AnalyzerConfig struct {
	MaxHistoryBars   int `json:"max_history_bars" yaml:"max_history_bars"`
	SMAPeriod        int `json:"sma_period" yaml:"sma_period"`
	ATRPeriod        int `json:"atr_period" yaml:"atr_period"`
	VolatilityWindow int `json:"volatility_window" yaml:"volatility_window"`
}

// IndicatorValues represents the most recent indicator values for a symbol
type IndicatorValues struct {
	Symbol          string  `json:"symbol"`
	CurrentPrice    float64 `json:"current_price"`
	SMA             float64 `json:"sma"`
	EMA             float64 `json:"ema"`
	RSI             float64 `json:"rsi"`
	MACD            float64 `json:"macd"`
	MACDSignal      float64 `json:"macd_signal"`
	ATR             float64 `json:"atr"`
	BollingerUpper  float64 `json:"bollinger_upper"`
	BollingerMiddle float64 `json:"bollinger_middle"`
	BollingerLower  float64 `json:"bollinger_lower"`
}

// NewTechnicalAnalyzer creates a new technical analyzer
func NewTechnicalAnalyzer(config AnalyzerConfig) *TechnicalAnalyzer {
	if config.MaxHistoryBars <= 0 {
		config.MaxHistoryBars = 200
	}
	if config.SMAPeriod <= 0 {
		config.SMAPeriod = 20
	}
	if config.ATRPeriod <= 0 {
		config.ATRPeriod = 14
	}
	if config.VolatilityWindow <= 0 {
		config.VolatilityWindow = 20
	}
	return &TechnicalAnalyzer{
		config: config,
		data:   make(map[string]*symbolData),
	}
}

// AddBar appends a bar to the symbol's rolling history
func (ta *TechnicalAnalyzer) AddBar(bar types.PriceBar) {
	sd, ok := ta.data[bar.Symbol]
	if !ok {
		sd = &symbolData{}
		ta.data[bar.Symbol] = sd
	}
	sd.bars = append(sd.bars, bar)
	if len(sd.bars) > ta.config.MaxHistoryBars {
		sd.bars = sd.bars[1:]
	}
}

// Reset discards all stored history
func (ta *TechnicalAnalyzer) Reset() {
	ta.data = make(map[string]*symbolData)
}

// BarCount returns the number of stored bars for a symbol
func (ta *TechnicalAnalyzer) BarCount(symbol string) int {
	if sd, ok := ta.data[symbol]; ok {
		return len(sd.bars)
	}
	return 0
}

// RealizedVolatility returns the sample standard deviation of the last
// `window` close-to-close returns for a symbol, or 0 with too little
// history. The volatility-adjusted sizing policy consumes this.
func (ta *TechnicalAnalyzer) RealizedVolatility(symbol string, window int) float64 {
	sd, ok := ta.data[symbol]
	if !ok {
		return 0
	}
	if window <= 0 {
		window = ta.config.VolatilityWindow
	}
	returns := types.CloseReturns(sd.bars)
	if len(returns) > window {
		returns = returns[len(returns)-window:]
	}
	return stats.StdDev(returns)
}

// Values computes the current indicator values for a symbol, or nil with
// no stored history.
func (ta *TechnicalAnalyzer) Values(symbol string) *IndicatorValues {
	sd, ok := ta.data[symbol]
	if !ok || len(sd.bars) == 0 {
		return nil
	}

	closes := types.Closes(sd.bars)
	highs := make([]float64, len(sd.bars))
	lows := make([]float64, len(sd.bars))
	for i, bar := range sd.bars {
		highs[i] = bar.High
		lows[i] = bar.Low
	}

	values := &IndicatorValues{
		Symbol:       symbol,
		CurrentPrice: closes[len(closes)-1],
	}
	values.SMA = last(indicator.Sma(ta.config.SMAPeriod, closes))
	values.EMA = last(indicator.Ema(ta.config.SMAPeriod, closes))

	_, rsi := indicator.Rsi(closes)
	values.RSI = last(rsi)

	macd, signal := indicator.Macd(closes)
	values.MACD = last(macd)
	values.MACDSignal = last(signal)

	_, atr := indicator.Atr(ta.config.ATRPeriod, highs, lows, closes)
	values.ATR = last(atr)

	middle, upper, lower := indicator.BollingerBands(closes)
	values.BollingerMiddle = last(middle)
	values.BollingerUpper = last(upper)
	values.BollingerLower = last(lower)

	return values
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
