// Package execution simulates order fills against historical bars, applying
// slippage and commission and maintaining the position ledger and trade log.
package execution

import (
	"quantbt/internal/types"
)

// Default fractional rates applied to every fill
const (
	DefaultCommission = 0.001
	DefaultSlippage   = 0.0005
)

// Executor applies slippage and commission to desired trades and updates
// the ledger. Invalid orders (a buy exceeding available cash, a sell
// exceeding the held quantity) are rejected without mutating any state;
// the rejection is observable through the unfilled return value and the
// absence of a new trade log entry.
type Executor struct {
	commission float64
	slippage   float64
}

// NewExecutor creates an executor with the given fractional commission and
// slippage rates
func NewExecutor(commission, slippage float64) *Executor {
	return &Executor{commission: commission, slippage: slippage}
}

// NewDefaultExecutor creates an executor with the default rates
func NewDefaultExecutor() *Executor {
	return NewExecutor(DefaultCommission, DefaultSlippage)
}

// Commission returns the fractional commission rate
func (e *Executor) Commission() float64 { return e.commission }

// Slippage returns the fractional slippage rate
func (e *Executor) Slippage() float64 { return e.slippage }

// Buy executes a buy at the bar close adjusted for slippage. Returns the
// new cash balance and whether the order filled. A buy whose total cost
// exceeds available cash is rejected and leaves cash and ledger unchanged.
func (e *Executor) Buy(ledger *Ledger, signal types.Signal, quantity int, bar types.PriceBar, cash float64) (float64, bool) {
	if quantity <= 0 {
		return cash, false
	}

	executionPrice := bar.Close * (1 + e.slippage)
	gross := float64(quantity) * executionPrice
	commission := gross * e.commission
	totalCost := gross + commission
	if totalCost > cash {
		return cash, false
	}

	ledger.recordBuy(signal.Symbol, quantity, executionPrice)
	ledger.appendTrade(types.Trade{
		Timestamp:      bar.Timestamp,
		Symbol:         signal.Symbol,
		Action:         types.SignalActionBuy,
		Quantity:       quantity,
		ExecutionPrice: executionPrice,
		GrossAmount:    gross,
		Commission:     commission,
		Reason:         signal.Reason,
	})
	return cash - totalCost, true
}

// Sell executes a sell at the bar close adjusted for slippage. A sell with
// no open position or for more shares than held is rejected and leaves
// cash and ledger unchanged. Realized P&L is measured against the
// position's weighted-average cost.
func (e *Executor) Sell(ledger *Ledger, signal types.Signal, quantity int, bar types.PriceBar, cash float64) (float64, bool) {
	if quantity <= 0 {
		return cash, false
	}
	position, ok := ledger.position(signal.Symbol)
	if !ok || quantity > position.Quantity {
		return cash, false
	}

	executionPrice := bar.Close * (1 - e.slippage)
	gross := float64(quantity) * executionPrice
	commission := gross * e.commission
	netProceeds := gross - commission
	realizedPnL := (executionPrice - position.AverageCost) * float64(quantity)

	ledger.recordSell(signal.Symbol, quantity)
	ledger.appendTrade(types.Trade{
		Timestamp:      bar.Timestamp,
		Symbol:         signal.Symbol,
		Action:         types.SignalActionSell,
		Quantity:       quantity,
		ExecutionPrice: executionPrice,
		GrossAmount:    gross,
		Commission:     commission,
		RealizedPnL:    realizedPnL,
		Reason:         signal.Reason,
	})
	return cash + netProceeds, true
}
