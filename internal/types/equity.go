package types

import (
	"time"
)

// EquityPoint represents total portfolio value after processing one bar.
// The sequence of equity points forms the equity curve, the primary input
// to drawdown and ratio calculations.
type EquityPoint struct {
	Timestamp  time.Time           `json:"timestamp"`
	TotalValue float64             `json:"total_value"`
	Cash       float64             `json:"cash"`
	Positions  map[string]Position `json:"positions,omitempty"`
}

// EquityValues extracts the total-value series from an equity curve
func EquityValues(curve []EquityPoint) []float64 {
	values := make([]float64, len(curve))
	for i, point := range curve {
		values[i] = point.TotalValue
	}
	return values
}

// EquityReturns computes period-over-period returns of the equity curve.
// Fewer than 2 points yields an empty slice.
func EquityReturns(curve []EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].TotalValue
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curve[i].TotalValue-prev)/prev)
	}
	return returns
}
