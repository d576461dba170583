// Package sizing converts trading signals into integer share quantities
// according to the configured position-sizing policy.
package sizing

import (
	"fmt"
	"math"

	"quantbt/internal/types"
)

// Config holds position sizer configuration
type Config struct {
	// KellyCap clamps the Kelly fraction to avoid over-betting (default 0.25)
	KellyCap float64 `json:"kelly_cap" yaml:"kelly_cap"`
	// BaseFraction is the capital fraction for volatility-adjusted sizing
	// before scaling (default 0.10)
	BaseFraction float64 `json:"base_fraction" yaml:"base_fraction"`
	// TargetVolatility is the per-period volatility the adjusted position
	// is scaled towards (default 0.02)
	TargetVolatility float64 `json:"target_volatility" yaml:"target_volatility"`
	// MaxFraction caps any policy at this fraction of capital (default 1.0)
	MaxFraction float64 `json:"max_fraction" yaml:"max_fraction"`
}

// DefaultConfig returns default sizing configuration
func DefaultConfig() Config {
	return Config{
		KellyCap:         0.25,
		BaseFraction:     0.10,
		TargetVolatility: 0.02,
		MaxFraction:      1.0,
	}
}

// Inputs carries the market and account state a sizing decision depends on
type Inputs struct {
	Capital    float64 // available cash
	Price      float64 // current price, typically the bar close
	WinRate    float64 // fraction of winning closed trades (Kelly)
	AvgWin     float64 // mean winning return fraction (Kelly)
	AvgLoss    float64 // mean losing return magnitude (Kelly)
	Volatility float64 // recent per-period return volatility (vol-adjusted)
}

// Sizer computes share quantities for signals
type Sizer struct {
	config Config
}

// NewSizer creates a new position sizer
func NewSizer(config Config) *Sizer {
	if config.KellyCap <= 0 {
		config.KellyCap = 0.25
	}
	if config.BaseFraction <= 0 {
		config.BaseFraction = 0.10
	}
	if config.TargetVolatility <= 0 {
		config.TargetVolatility = 0.02
	}
	if config.MaxFraction <= 0 {
		config.MaxFraction = 1.0
	}
	return &Sizer{config: config}
}

// Shares returns the share quantity for a signal. An explicit quantity on
// the signal bypasses sizing entirely. An unsupported sizing method is a
// configuration error; degenerate numeric inputs size to 0 shares.
func (s *Sizer) Shares(signal types.Signal, in Inputs) (int, error) {
	if signal.Quantity != nil {
		if *signal.Quantity < 0 {
			return 0, fmt.Errorf("signal quantity must be non-negative, got %d", *signal.Quantity)
		}
		return *signal.Quantity, nil
	}
	if in.Price <= 0 || in.Capital <= 0 {
		return 0, nil
	}

	var fraction float64
	switch signal.SizingMethod {
	case types.SizingFixedDollar:
		return clampShares(signal.SizingValue / in.Price), nil
	case types.SizingPercentCapital:
		fraction = signal.SizingValue / 100
	case types.SizingKellyCriterion:
		fraction = s.kellyFraction(in)
	case types.SizingVolatilityAdjusted:
		fraction = s.volatilityFraction(in)
	case "":
		return 0, fmt.Errorf("signal for %s has neither explicit quantity nor sizing method", signal.Symbol)
	default:
		return 0, fmt.Errorf("unsupported sizing method: %q", signal.SizingMethod)
	}

	if fraction < 0 {
		fraction = 0
	}
	if fraction > s.config.MaxFraction {
		fraction = s.config.MaxFraction
	}
	return clampShares(in.Capital * fraction / in.Price), nil
}

// kellyFraction computes f = (p*avgWin - (1-p)*avgLoss) / avgWin clamped
// to [0, KellyCap]. Without win history there is no edge to size on.
func (s *Sizer) kellyFraction(in Inputs) float64 {
	if in.AvgWin <= 0 {
		return 0
	}
	f := (in.WinRate*in.AvgWin - (1-in.WinRate)*in.AvgLoss) / in.AvgWin
	if f < 0 {
		return 0
	}
	if f > s.config.KellyCap {
		return s.config.KellyCap
	}
	return f
}

// volatilityFraction scales the base fraction by targetVolatility/volatility
// so quieter markets carry larger positions. Unknown volatility leaves the
// base fraction unscaled.
func (s *Sizer) volatilityFraction(in Inputs) float64 {
	if in.Volatility <= 0 {
		return s.config.BaseFraction
	}
	return s.config.BaseFraction * s.config.TargetVolatility / in.Volatility
}

func clampShares(x float64) int {
	if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int(math.Floor(x))
}
