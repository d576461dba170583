package backtest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"quantbt/internal/logging"
	"quantbt/internal/sizing"
	"quantbt/internal/strategy"
	"quantbt/internal/types"
)

// WalkForwardConfig holds walk-forward analysis configuration
type WalkForwardConfig struct {
	TrainBars     int   `json:"train_bars" yaml:"train_bars"`
	TestBars      int   `json:"test_bars" yaml:"test_bars"`
	StepBars      int   `json:"step_bars" yaml:"step_bars"`
	MaxCandidates int   `json:"max_candidates" yaml:"max_candidates"`
	Seed          int64 `json:"seed" yaml:"seed"`
}

// DefaultWalkForwardConfig returns default walk-forward configuration
func DefaultWalkForwardConfig() *WalkForwardConfig {
	return &WalkForwardConfig{
		TrainBars:     252,
		TestBars:      63,
		StepBars:      63,
		MaxCandidates: 24,
		Seed:          1,
	}
}

// Validate reports configuration errors
func (c *WalkForwardConfig) Validate() error {
	if c.TrainBars <= 0 || c.TestBars <= 0 || c.StepBars <= 0 {
		return fmt.Errorf("train, test and step bar counts must be positive")
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("max candidates must be positive, got %d", c.MaxCandidates)
	}
	return nil
}

// WindowResult records one train/test window of walk-forward analysis
type WindowResult struct {
	Window       int                `json:"window"`
	TrainStart   int                `json:"train_start"`
	TrainEnd     int                `json:"train_end"`
	TestStart    int                `json:"test_start"`
	TestEnd      int                `json:"test_end"`
	BestParams   map[string]float64 `json:"best_params"`
	TrainScore   float64            `json:"train_score"`
	TestReturn   float64            `json:"test_return"`
	TestSharpe   float64            `json:"test_sharpe"`
	TestDrawdown float64            `json:"test_drawdown"`
	Profitable   bool               `json:"profitable"`
}

// WalkForwardResult aggregates all windows of a walk-forward run
type WalkForwardResult struct {
	Windows       []WindowResult `json:"windows"`
	AvgTestReturn float64        `json:"avg_test_return"`
	AvgTestSharpe float64        `json:"avg_test_sharpe"`
	Consistency   float64        `json:"consistency"`
}

// WalkForwardRunner slides train/test windows across the bar sequence,
// optimizing strategy parameters in-sample and evaluating the winner
// out-of-sample on the following test window.
type WalkForwardRunner struct {
	config       *WalkForwardConfig
	engineConfig *Config
	sizerConfig  sizing.Config
	logger       *logging.Logger
}

// NewWalkForwardRunner creates a new walk-forward runner
func NewWalkForwardRunner(config *WalkForwardConfig, engineConfig *Config, sizerConfig sizing.Config) *WalkForwardRunner {
	if config == nil {
		config = DefaultWalkForwardConfig()
	}
	if engineConfig == nil {
		engineConfig = DefaultConfig()
	}
	return &WalkForwardRunner{
		config:       config,
		engineConfig: engineConfig,
		sizerConfig:  sizerConfig,
		logger:       logging.NewComponentLogger("walkforward"),
	}
}

// Run executes walk-forward analysis over the bar sequence
func (r *WalkForwardRunner) Run(ctx context.Context, bars []types.PriceBar, strat strategy.Strategy) (*WalkForwardResult, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	windowSpan := r.config.TrainBars + r.config.TestBars
	if len(bars) < windowSpan {
		return nil, fmt.Errorf("need at least %d bars for one walk-forward window, got %d", windowSpan, len(bars))
	}

	candidates, err := r.candidateParams(strat)
	if err != nil {
		return nil, err
	}
	r.logger.Infof("Walk-forward: %d candidate parameter sets over %d bars", len(candidates), len(bars))

	result := &WalkForwardResult{Windows: make([]WindowResult, 0)}
	window := 0
	for start := 0; start+windowSpan <= len(bars); start += r.config.StepBars {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		trainEnd := start + r.config.TrainBars
		testEnd := trainEnd + r.config.TestBars
		windowResult, err := r.runWindow(ctx, window, bars[start:trainEnd], bars[trainEnd:testEnd], strat, candidates)
		if err != nil {
			return nil, err
		}
		windowResult.TrainStart = start
		windowResult.TrainEnd = trainEnd
		windowResult.TestStart = trainEnd
		windowResult.TestEnd = testEnd
		result.Windows = append(result.Windows, *windowResult)
		window++
	}

	r.aggregate(result)
	r.logger.Infof("Walk-forward completed: %d windows, consistency %.2f", len(result.Windows), result.Consistency)
	return result, nil
}

// runWindow picks the best in-sample candidate and evaluates it on the
// test slice.
func (r *WalkForwardRunner) runWindow(ctx context.Context, window int, train, test []types.PriceBar, strat strategy.Strategy, candidates []map[string]float64) (*WindowResult, error) {
	best := candidates[0]
	bestScore := math.Inf(-1)
	for _, params := range candidates {
		engine := NewEngine(r.engineConfig, r.sizerConfig)
		trainResult, err := engine.Run(ctx, train, strat, params)
		if err != nil {
			return nil, err
		}
		score := objective(trainResult)
		if score > bestScore {
			bestScore = score
			best = params
		}
	}

	engine := NewEngine(r.engineConfig, r.sizerConfig)
	testResult, err := engine.Run(ctx, test, strat, best)
	if err != nil {
		return nil, err
	}

	testReturn := testResult.TotalReturnPercent / 100
	return &WindowResult{
		Window:       window,
		BestParams:   best,
		TrainScore:   bestScore,
		TestReturn:   testReturn,
		TestSharpe:   testResult.SharpeRatio,
		TestDrawdown: testResult.MaxDrawdown,
		Profitable:   testReturn > 0,
	}, nil
}

// objective scores an in-sample run: return per unit of drawdown, with
// the drawdown floored so flawless runs do not divide by zero.
func objective(result *types.BacktestResult) float64 {
	return result.TotalReturnPercent / 100 / math.Max(0.01, result.MaxDrawdown)
}

// candidateParams enumerates the strategy's parameter grid. Grids larger
// than MaxCandidates are downsampled with the seeded RNG so repeated runs
// search the same subset.
func (r *WalkForwardRunner) candidateParams(strat strategy.Strategy) ([]map[string]float64, error) {
	ranges := strat.ParameterRanges()
	names := make([]string, 0, len(ranges))
	for name, rng := range ranges {
		if err := rng.Validate(); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	candidates := []map[string]float64{{}}
	for _, name := range names {
		values := ranges[name].Values()
		expanded := make([]map[string]float64, 0, len(candidates)*len(values))
		for _, base := range candidates {
			for _, v := range values {
				params := make(map[string]float64, len(names))
				for k, bv := range base {
					params[k] = bv
				}
				params[name] = v
				expanded = append(expanded, params)
			}
		}
		candidates = expanded
	}

	if len(candidates) > r.config.MaxCandidates {
		rng := rand.New(rand.NewSource(r.config.Seed))
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		candidates = candidates[:r.config.MaxCandidates]
	}
	return candidates, nil
}

// aggregate fills the summary statistics across windows
func (r *WalkForwardRunner) aggregate(result *WalkForwardResult) {
	n := len(result.Windows)
	if n == 0 {
		return
	}
	profitable := 0
	for _, w := range result.Windows {
		result.AvgTestReturn += w.TestReturn
		result.AvgTestSharpe += w.TestSharpe
		if w.Profitable {
			profitable++
		}
	}
	result.AvgTestReturn /= float64(n)
	result.AvgTestSharpe /= float64(n)
	result.Consistency = float64(profitable) / float64(n)
}
