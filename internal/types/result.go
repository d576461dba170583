package types

import (
	"time"
)

// BacktestResult contains the complete outcome of a single backtest run.
// It is created once by the performance reporter and immutable afterwards.
type BacktestResult struct {
	// Metadata
	RunID     string        `json:"run_id"`
	Strategy  string        `json:"strategy"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	BarCount  int           `json:"bar_count"`

	// Capital
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`
	FinalCash      float64 `json:"final_cash"`

	// Return metrics
	TotalReturn        float64 `json:"total_return"`
	TotalReturnPercent float64 `json:"total_return_percent"`
	AnnualizedReturn   float64 `json:"annualized_return"`
	Volatility         float64 `json:"volatility"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	SortinoRatio       float64 `json:"sortino_ratio"`
	CalmarRatio        float64 `json:"calmar_ratio"`

	// Drawdown
	MaxDrawdown         float64 `json:"max_drawdown"`
	MaxDrawdownDuration int     `json:"max_drawdown_duration"`

	// Risk metrics
	ValueAtRisk          float64 `json:"value_at_risk"`
	ExpectedShortfall    float64 `json:"expected_shortfall"`
	ShannonEntropy       float64 `json:"shannon_entropy"`
	ShannonProbability   float64 `json:"shannon_probability"`
	EffectiveProbability float64 `json:"effective_probability"`

	// Trading statistics
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	WinRate         float64 `json:"win_rate"`
	ProfitFactor    float64 `json:"profit_factor"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	LargestWin      float64 `json:"largest_win"`
	LargestLoss     float64 `json:"largest_loss"`
	TotalCommission float64 `json:"total_commission"`

	// Run detail
	EquityCurve    []EquityPoint       `json:"equity_curve"`
	Trades         []Trade             `json:"trades"`
	FinalPositions map[string]Position `json:"final_positions"`
}
