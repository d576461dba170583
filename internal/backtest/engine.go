// Package backtest orchestrates strategies bar-by-bar over historical data
// and aggregates the equity curve, trade log and performance metrics, plus
// the walk-forward and Monte Carlo wrappers for repeated runs.
package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"quantbt/internal/execution"
	"quantbt/internal/indicators"
	"quantbt/internal/logging"
	"quantbt/internal/sizing"
	"quantbt/internal/stats"
	"quantbt/internal/strategy"
	"quantbt/internal/types"
)

// Config holds backtest engine configuration
type Config struct {
	InitialCapital   float64 `json:"initial_capital" yaml:"initial_capital"`
	Commission       float64 `json:"commission" yaml:"commission"`
	Slippage         float64 `json:"slippage" yaml:"slippage"`
	PeriodsPerYear   int     `json:"periods_per_year" yaml:"periods_per_year"`
	RiskFreeRate     float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	VaRConfidence    float64 `json:"var_confidence" yaml:"var_confidence"`
	VolatilityWindow int     `json:"volatility_window" yaml:"volatility_window"`
}

// DefaultConfig returns default engine configuration
func DefaultConfig() *Config {
	return &Config{
		InitialCapital:   100000,
		Commission:       execution.DefaultCommission,
		Slippage:         execution.DefaultSlippage,
		PeriodsPerYear:   stats.DefaultPeriodsPerYear,
		RiskFreeRate:     0.02,
		VaRConfidence:    0.95,
		VolatilityWindow: 20,
	}
}

// Validate reports configuration errors
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %v", c.InitialCapital)
	}
	if c.Commission < 0 || c.Slippage < 0 {
		return fmt.Errorf("commission and slippage must be non-negative")
	}
	if c.PeriodsPerYear <= 0 {
		return fmt.Errorf("periods per year must be positive, got %d", c.PeriodsPerYear)
	}
	return nil
}

// Engine runs a strategy bar-by-bar over historical data. All mutable
// state is run-local and reset at the start of each Run, so independent
// engines may execute in parallel over the same immutable bars.
type Engine struct {
	config   *Config
	sizer    *sizing.Sizer
	executor *execution.Executor
	logger   *logging.Logger

	// run state
	cash        float64
	ledger      *execution.Ledger
	analyzer    *indicators.TechnicalAnalyzer
	equityCurve []types.EquityPoint
	lastPrices  map[string]float64
}

// NewEngine creates a new backtest engine
func NewEngine(config *Config, sizerConfig sizing.Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config:   config,
		sizer:    sizing.NewSizer(sizerConfig),
		executor: execution.NewExecutor(config.Commission, config.Slippage),
		logger:   logging.NewComponentLogger("engine"),
	}
}

// Run executes the strategy over the bar sequence and returns the final
// result. A run always completes and returns a result, even with zero
// bars or zero trades; only configuration errors and cancellation abort.
func (e *Engine) Run(ctx context.Context, bars []types.PriceBar, strat strategy.Strategy, params map[string]float64) (*types.BacktestResult, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	e.reset()

	for i, bar := range bars {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		e.analyzer.AddBar(bar)
		e.lastPrices[bar.Symbol] = bar.Close

		for _, signal := range strat.GetSignals(bars[:i+1], params) {
			if err := e.processSignal(signal, bar); err != nil {
				return nil, err
			}
		}

		e.appendEquityPoint(bar.Timestamp)
	}

	reporter := NewReporter(e.config)
	result := reporter.Report(strat.Name(), e.equityCurve, e.ledger.Trades(), e.ledger.Positions())
	result.Duration = time.Since(started)

	e.logger.Infof("Backtest completed: %d bars, %d trades, return %.2f%%",
		len(bars), result.TotalTrades, result.TotalReturnPercent)
	return result, nil
}

// reset clears all run-local state
func (e *Engine) reset() {
	e.cash = e.config.InitialCapital
	e.ledger = execution.NewLedger()
	e.analyzer = indicators.NewTechnicalAnalyzer(indicators.AnalyzerConfig{
		VolatilityWindow: e.config.VolatilityWindow,
	})
	e.equityCurve = make([]types.EquityPoint, 0)
	e.lastPrices = make(map[string]float64)
}

// processSignal sizes and executes one signal. Invalid orders are silent
// no-ops observable through the unchanged trade log; unsupported sizing
// configuration is an explicit error.
func (e *Engine) processSignal(signal types.Signal, bar types.PriceBar) error {
	switch signal.Action {
	case types.SignalActionBuy:
		quantity, err := e.sizer.Shares(signal, e.sizingInputs(signal, bar))
		if err != nil {
			return fmt.Errorf("sizing %s signal: %w", signal.Symbol, err)
		}
		newCash, filled := e.executor.Buy(e.ledger, signal, quantity, bar, e.cash)
		if !filled {
			e.logger.Debugf("Buy rejected for %s: quantity=%d cash=%.2f", signal.Symbol, quantity, e.cash)
		}
		e.cash = newCash
	case types.SignalActionSell:
		quantity := e.ledger.HeldQuantity(signal.Symbol)
		if signal.Quantity != nil {
			quantity = *signal.Quantity
		}
		newCash, filled := e.executor.Sell(e.ledger, signal, quantity, bar, e.cash)
		if !filled {
			e.logger.Debugf("Sell rejected for %s: quantity=%d held=%d",
				signal.Symbol, quantity, e.ledger.HeldQuantity(signal.Symbol))
		}
		e.cash = newCash
	default:
		return fmt.Errorf("unsupported signal action: %q", signal.Action)
	}
	return nil
}

// sizingInputs derives the sizer inputs for a signal: Kelly statistics
// from realized trade history and volatility from recent bar returns.
func (e *Engine) sizingInputs(signal types.Signal, bar types.PriceBar) sizing.Inputs {
	in := sizing.Inputs{
		Capital:    e.cash,
		Price:      bar.Close,
		Volatility: e.analyzer.RealizedVolatility(signal.Symbol, e.config.VolatilityWindow),
	}
	in.WinRate, in.AvgWin, in.AvgLoss = realizedEdge(e.ledger.Trades())
	return in
}

// realizedEdge summarizes closed-trade history: win rate, mean winning
// return and mean losing magnitude, all as fractions of cost basis.
func realizedEdge(trades []types.Trade) (winRate, avgWin, avgLoss float64) {
	var wins, losses int
	var winSum, lossSum float64
	for _, trade := range trades {
		if !trade.IsSell() {
			continue
		}
		r := trade.ReturnFraction()
		if r > 0 {
			wins++
			winSum += r
		} else {
			losses++
			lossSum += math.Abs(r)
		}
	}
	closed := wins + losses
	if closed == 0 {
		return 0, 0, 0
	}
	winRate = float64(wins) / float64(closed)
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return winRate, avgWin, avgLoss
}

// appendEquityPoint marks all open positions to their last-seen price and
// records total portfolio value for the bar.
func (e *Engine) appendEquityPoint(timestamp time.Time) {
	e.equityCurve = append(e.equityCurve, types.EquityPoint{
		Timestamp:  timestamp,
		TotalValue: e.cash + e.ledger.TotalMarketValue(e.lastPrices),
		Cash:       e.cash,
		Positions:  e.ledger.Positions(),
	})
}
