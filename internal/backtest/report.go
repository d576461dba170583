package backtest

import (
	"math"

	"github.com/google/uuid"

	"quantbt/internal/stats"
	"quantbt/internal/types"
)

// Reporter computes the final result of a run from the equity curve and
// trade log alone, so every derived metric is reproducible without any
// engine-internal state.
type Reporter struct {
	config *Config
}

// NewReporter creates a new performance reporter
func NewReporter(config *Config) *Reporter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reporter{config: config}
}

// Report builds the immutable BacktestResult. Zero trades or an empty
// equity curve produce a flat report, never an error.
func (r *Reporter) Report(strategyName string, curve []types.EquityPoint, trades []types.Trade, finalPositions map[string]types.Position) *types.BacktestResult {
	initial := r.config.InitialCapital
	result := &types.BacktestResult{
		RunID:          uuid.NewString(),
		Strategy:       strategyName,
		BarCount:       len(curve),
		InitialCapital: initial,
		FinalCapital:   initial,
		FinalCash:      initial,
		EquityCurve:    curve,
		Trades:         trades,
		FinalPositions: finalPositions,
	}
	if len(curve) > 0 {
		result.StartTime = curve[0].Timestamp
		result.EndTime = curve[len(curve)-1].Timestamp
		result.FinalCapital = curve[len(curve)-1].TotalValue
		result.FinalCash = curve[len(curve)-1].Cash
	}

	r.applyReturnMetrics(result, curve)
	r.applyTradeStats(result, trades)
	return result
}

// applyReturnMetrics derives return, drawdown and risk metrics from the
// equity curve. The initial capital is prepended to the value series so
// the first bar's move is included.
func (r *Reporter) applyReturnMetrics(result *types.BacktestResult, curve []types.EquityPoint) {
	initial := r.config.InitialCapital
	periodsPerYear := r.config.PeriodsPerYear

	result.TotalReturn = result.FinalCapital - initial
	result.TotalReturnPercent = result.TotalReturn / initial * 100

	values := append([]float64{initial}, types.EquityValues(curve)...)
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}

	drawdown := stats.MaxDrawdown(values)
	result.MaxDrawdown = drawdown.Max
	result.MaxDrawdownDuration = drawdown.Duration

	result.AnnualizedReturn = stats.AnnualizedReturn(values, periodsPerYear)
	result.Volatility = stats.AnnualizedVolatility(returns, periodsPerYear)
	result.SharpeRatio = stats.SharpeRatio(returns, r.config.RiskFreeRate, periodsPerYear)
	result.SortinoRatio = stats.SortinoRatio(returns, r.config.RiskFreeRate, periodsPerYear)
	result.CalmarRatio = stats.CalmarRatio(values, periodsPerYear)

	result.ValueAtRisk = stats.HistoricalVaR(returns, r.config.VaRConfidence)
	result.ExpectedShortfall = stats.ExpectedShortfall(returns, r.config.VaRConfidence)
	result.ShannonEntropy = stats.ShannonEntropy(returns)
	result.ShannonProbability = stats.ShannonProbability(returns)
	result.EffectiveProbability = stats.EffectiveProbability(returns)
}

// applyTradeStats derives win/loss statistics from the trade log. Win rate
// counts only sells, the trades carrying realized P&L.
func (r *Reporter) applyTradeStats(result *types.BacktestResult, trades []types.Trade) {
	result.TotalTrades = len(trades)

	var wins, losses int
	var winSum, lossSum float64
	for _, trade := range trades {
		result.TotalCommission += trade.Commission
		if !trade.IsSell() {
			continue
		}
		pnl := trade.RealizedPnL
		if pnl > 0 {
			wins++
			winSum += pnl
			if pnl > result.LargestWin {
				result.LargestWin = pnl
			}
		} else {
			losses++
			lossSum += math.Abs(pnl)
			if pnl < result.LargestLoss {
				result.LargestLoss = pnl
			}
		}
	}

	result.WinningTrades = wins
	result.LosingTrades = losses
	closed := wins + losses
	if closed > 0 {
		result.WinRate = float64(wins) / float64(closed)
	}
	if wins > 0 {
		result.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		result.AvgLoss = lossSum / float64(losses)
	}
	if lossSum > 0 {
		result.ProfitFactor = winSum / lossSum
	}
}
