// Package strategy defines the pluggable signal-generator contract the
// backtest engine runs, plus the reference strategies shipped with the
// repository. The engine depends only on the Strategy interface; concrete
// strategies are selected by name through the registry.
package strategy

import (
	"fmt"
	"sort"

	"quantbt/internal/types"
)

// Range declares the values a tunable parameter may take during
// optimization: min..max inclusive, advancing by step.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Values enumerates the candidate values of the range
func (r Range) Values() []float64 {
	values := make([]float64, 0)
	for v := r.Min; v <= r.Max+1e-9; v += r.Step {
		values = append(values, v)
	}
	return values
}

// Validate reports malformed ranges as configuration errors
func (r Range) Validate() error {
	if r.Step <= 0 {
		return fmt.Errorf("parameter step must be positive, got %v", r.Step)
	}
	if r.Max < r.Min {
		return fmt.Errorf("parameter max %v below min %v", r.Max, r.Min)
	}
	return nil
}

// Strategy is the signal-generator contract. GetSignals receives all bars
// up to and including the current one and returns zero or more signals for
// the latest bar. Implementations must be stateless with respect to runs:
// the same bars and parameters always produce the same signals.
type Strategy interface {
	Name() string
	GetSignals(bars []types.PriceBar, params map[string]float64) []types.Signal
	ParameterRanges() map[string]Range
}

// factories maps strategy names to constructors for CLI lookup
var factories = map[string]func() Strategy{
	"sma_crossover": func() Strategy { return NewSMACrossover() },
	"rsi_reversion": func() Strategy { return NewRSIReversion() },
}

// New creates a registered strategy by name
func New(name string) (Strategy, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %q (available: %v)", name, Names())
	}
	return factory(), nil
}

// Names lists the registered strategy names in sorted order
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// symbolBars narrows a merged multi-symbol sequence to the bars of one
// symbol, preserving order. Indicators must never mix closes across symbols.
func symbolBars(bars []types.PriceBar, symbol string) []types.PriceBar {
	filtered := make([]types.PriceBar, 0, len(bars))
	for _, bar := range bars {
		if bar.Symbol == symbol {
			filtered = append(filtered, bar)
		}
	}
	return filtered
}

// paramOr reads a parameter with a fallback default
func paramOr(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}
