package types

// SignalAction represents the direction of a trading signal
type SignalAction string

const (
	SignalActionBuy  SignalAction = "buy"
	SignalActionSell SignalAction = "sell"
)

// SizingMethod represents a position sizing policy
type SizingMethod string

const (
	SizingFixedDollar        SizingMethod = "fixed_dollar"
	SizingPercentCapital     SizingMethod = "percent_capital"
	SizingKellyCriterion     SizingMethod = "kelly_criterion"
	SizingVolatilityAdjusted SizingMethod = "volatility_adjusted"
)

// Signal represents a trading signal produced by a strategy for a given bar.
// Quantity is optional; when nil the position sizer computes the share count
// for buys, and sells close the entire held position.
type Signal struct {
	Action       SignalAction `json:"action"`
	Symbol       string       `json:"symbol"`
	Quantity     *int         `json:"quantity,omitempty"`
	SizingMethod SizingMethod `json:"sizing_method,omitempty"`
	SizingValue  float64      `json:"sizing_value,omitempty"`
	Reason       string       `json:"reason"`
}

// NewBuySignal creates a buy signal sized by the given policy
func NewBuySignal(symbol string, method SizingMethod, value float64, reason string) Signal {
	return Signal{
		Action:       SignalActionBuy,
		Symbol:       symbol,
		SizingMethod: method,
		SizingValue:  value,
		Reason:       reason,
	}
}

// NewSellSignal creates a sell signal closing the entire position
func NewSellSignal(symbol string, reason string) Signal {
	return Signal{
		Action: SignalActionSell,
		Symbol: symbol,
		Reason: reason,
	}
}

// WithQuantity returns a copy of the signal with an explicit share count,
// bypassing the position sizer.
func (s Signal) WithQuantity(quantity int) Signal {
	s.Quantity = &quantity
	return s
}

// IsBuy returns true if this is a buy signal
func (s Signal) IsBuy() bool {
	return s.Action == SignalActionBuy
}

// IsSell returns true if this is a sell signal
func (s Signal) IsSell() bool {
	return s.Action == SignalActionSell
}
