package types

import (
	"time"
)

// PriceBar represents one OHLCV bar of historical price data
type PriceBar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// NewPriceBar creates a new PriceBar instance
func NewPriceBar(symbol string, timestamp time.Time, open, high, low, close, volume float64) PriceBar {
	return PriceBar{
		Symbol:    symbol,
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

// GetPrice returns the closing price (commonly used price)
func (b PriceBar) GetPrice() float64 {
	return b.Close
}

// GetTypicalPrice returns (high + low + close) / 3
func (b PriceBar) GetTypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// GetRange returns the price range (high - low)
func (b PriceBar) GetRange() float64 {
	return b.High - b.Low
}

// IsBullish returns true if close > open
func (b PriceBar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish returns true if close < open
func (b PriceBar) IsBearish() bool {
	return b.Close < b.Open
}

// Closes extracts the closing prices from a bar sequence
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}

// CloseReturns computes close-to-close simple returns for a bar sequence.
// The result has len(bars)-1 entries; fewer than 2 bars yields an empty slice.
func CloseReturns(bars []PriceBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (bars[i].Close-prev)/prev)
	}
	return returns
}
