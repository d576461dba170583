package types

import (
	"time"
)

// Trade represents a single executed buy or sell. Trades are immutable once
// recorded; the trade log is append-only and ordered by bar sequence.
type Trade struct {
	Timestamp      time.Time    `json:"timestamp"`
	Symbol         string       `json:"symbol"`
	Action         SignalAction `json:"action"`
	Quantity       int          `json:"quantity"`
	ExecutionPrice float64      `json:"execution_price"`
	GrossAmount    float64      `json:"gross_amount"`
	Commission     float64      `json:"commission"`
	RealizedPnL    float64      `json:"realized_pnl"` // set on sells only
	Reason         string       `json:"reason"`
}

// IsBuy returns true if this trade was a buy
func (t Trade) IsBuy() bool {
	return t.Action == SignalActionBuy
}

// IsSell returns true if this trade was a sell
func (t Trade) IsSell() bool {
	return t.Action == SignalActionSell
}

// ReturnFraction returns the realized profit/loss of a sell relative to its
// cost basis. Buys and degenerate trades return 0.
func (t Trade) ReturnFraction() float64 {
	if !t.IsSell() {
		return 0
	}
	basis := t.GrossAmount - t.RealizedPnL
	if basis == 0 {
		return 0
	}
	return t.RealizedPnL / basis
}
