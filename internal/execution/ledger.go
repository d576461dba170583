package execution

import (
	"quantbt/internal/types"
)

// Ledger tracks open positions and the append-only trade log for one
// backtest run. It is run-local state and not safe for concurrent use;
// parallel runs each own their own ledger.
type Ledger struct {
	positions map[string]*types.Position
	trades    []types.Trade
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		positions: make(map[string]*types.Position),
		trades:    make([]types.Trade, 0),
	}
}

// Position returns a copy of the open position for a symbol
func (l *Ledger) Position(symbol string) (types.Position, bool) {
	p, ok := l.positions[symbol]
	if !ok {
		return types.Position{}, false
	}
	return *p, true
}

// HeldQuantity returns the number of shares held for a symbol
func (l *Ledger) HeldQuantity(symbol string) int {
	if p, ok := l.positions[symbol]; ok {
		return p.Quantity
	}
	return 0
}

// Positions returns a snapshot copy of all open positions
func (l *Ledger) Positions() map[string]types.Position {
	snapshot := make(map[string]types.Position, len(l.positions))
	for symbol, p := range l.positions {
		snapshot[symbol] = *p
	}
	return snapshot
}

// Trades returns the trade log in execution order
func (l *Ledger) Trades() []types.Trade {
	trades := make([]types.Trade, len(l.trades))
	copy(trades, l.trades)
	return trades
}

// TradeCount returns the number of recorded trades
func (l *Ledger) TradeCount() int {
	return len(l.trades)
}

// TotalMarketValue values all open positions at the given last-seen prices.
// Symbols with no observed price fall back to their average cost.
func (l *Ledger) TotalMarketValue(lastPrices map[string]float64) float64 {
	total := 0.0
	for symbol, p := range l.positions {
		price, ok := lastPrices[symbol]
		if !ok {
			price = p.AverageCost
		}
		total += p.MarketValue(price)
	}
	return total
}

func (l *Ledger) position(symbol string) (*types.Position, bool) {
	p, ok := l.positions[symbol]
	return p, ok
}

func (l *Ledger) recordBuy(symbol string, quantity int, price float64) {
	if p, ok := l.positions[symbol]; ok {
		p.AddShares(quantity, price)
		return
	}
	l.positions[symbol] = types.NewPosition(symbol, quantity, price)
}

func (l *Ledger) recordSell(symbol string, quantity int) {
	p, ok := l.positions[symbol]
	if !ok {
		return
	}
	p.Quantity -= quantity
	if p.Quantity <= 0 {
		delete(l.positions, symbol)
	}
}

func (l *Ledger) appendTrade(trade types.Trade) {
	l.trades = append(l.trades, trade)
}
