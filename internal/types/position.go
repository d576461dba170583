package types

// Position represents an open long position in a single symbol.
// A position exists only while its quantity is above zero; the executor
// removes it from the ledger once fully sold.
type Position struct {
	Symbol      string  `json:"symbol"`
	Quantity    int     `json:"quantity"`
	AverageCost float64 `json:"average_cost"`
}

// NewPosition creates a new position
func NewPosition(symbol string, quantity int, averageCost float64) *Position {
	return &Position{
		Symbol:      symbol,
		Quantity:    quantity,
		AverageCost: averageCost,
	}
}

// CostBasis returns quantity times average cost
func (p *Position) CostBasis() float64 {
	return float64(p.Quantity) * p.AverageCost
}

// MarketValue returns the position value at the given price
func (p *Position) MarketValue(price float64) float64 {
	return float64(p.Quantity) * price
}

// UnrealizedPnL returns the open profit/loss at the given price
func (p *Position) UnrealizedPnL(price float64) float64 {
	return (price - p.AverageCost) * float64(p.Quantity)
}

// AddShares folds a fill into the position using weighted-average cost
func (p *Position) AddShares(quantity int, price float64) {
	total := p.CostBasis() + float64(quantity)*price
	p.Quantity += quantity
	if p.Quantity > 0 {
		p.AverageCost = total / float64(p.Quantity)
	}
}
