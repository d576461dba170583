package backtest

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"quantbt/internal/logging"
	"quantbt/internal/sizing"
	"quantbt/internal/stats"
	"quantbt/internal/strategy"
	"quantbt/internal/types"
)

// MonteCarloConfig holds Monte Carlo simulation configuration
type MonteCarloConfig struct {
	Iterations int   `json:"iterations" yaml:"iterations"`
	Seed       int64 `json:"seed" yaml:"seed"`
	Workers    int   `json:"workers" yaml:"workers"`
}

// DefaultMonteCarloConfig returns default Monte Carlo configuration
func DefaultMonteCarloConfig() *MonteCarloConfig {
	return &MonteCarloConfig{
		Iterations: 500,
		Seed:       1,
		Workers:    runtime.NumCPU(),
	}
}

// Validate reports configuration errors
func (c *MonteCarloConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	return nil
}

// reportedPercentiles are the distribution points included in the result
var reportedPercentiles = []int{5, 25, 50, 75, 95}

// MonteCarloResult summarizes the return distribution over all iterations
type MonteCarloResult struct {
	Iterations        int             `json:"iterations"`
	MeanReturn        float64         `json:"mean_return"`
	StdDev            float64         `json:"std_dev"`
	ProbabilityOfLoss float64         `json:"probability_of_loss"`
	BestCase          float64         `json:"best_case"`
	WorstCase         float64         `json:"worst_case"`
	Percentiles       map[int]float64 `json:"percentiles"`
	Returns           []float64       `json:"returns"`
}

// MonteCarloRunner runs N independent backtests over bootstrap-resampled
// bar sequences. Each iteration derives its RNG from the base seed plus
// the iteration index, so results are reproducible regardless of how the
// worker pool schedules them.
type MonteCarloRunner struct {
	config       *MonteCarloConfig
	engineConfig *Config
	sizerConfig  sizing.Config
	logger       *logging.Logger
}

// NewMonteCarloRunner creates a new Monte Carlo runner
func NewMonteCarloRunner(config *MonteCarloConfig, engineConfig *Config, sizerConfig sizing.Config) *MonteCarloRunner {
	if config == nil {
		config = DefaultMonteCarloConfig()
	}
	if engineConfig == nil {
		engineConfig = DefaultConfig()
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return &MonteCarloRunner{
		config:       config,
		engineConfig: engineConfig,
		sizerConfig:  sizerConfig,
		logger:       logging.NewComponentLogger("montecarlo"),
	}
}

// Run executes the simulation. Iterations run on a bounded worker pool;
// each run only reads the shared immutable bars and owns all of its
// mutable state, so no locking is needed beyond the result channel.
func (r *MonteCarloRunner) Run(ctx context.Context, bars []types.PriceBar, strat strategy.Strategy, params map[string]float64) (*MonteCarloResult, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("monte carlo requires a non-empty bar sequence")
	}

	workers := r.config.Workers
	if workers > r.config.Iterations {
		workers = r.config.Iterations
	}
	r.logger.Infof("Monte Carlo: %d iterations on %d workers, seed %d",
		r.config.Iterations, workers, r.config.Seed)

	type outcome struct {
		ret float64
		err error
	}
	jobs := make(chan int)
	outcomes := make(chan outcome, r.config.Iterations)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iteration := range jobs {
				ret, err := r.runIteration(ctx, iteration, bars, strat, params)
				outcomes <- outcome{ret: ret, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < r.config.Iterations; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	close(outcomes)

	returns := make([]float64, 0, r.config.Iterations)
	for o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}
		returns = append(returns, o.ret)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return r.summarize(returns), nil
}

// runIteration backtests one bootstrap resample of the bar sequence
func (r *MonteCarloRunner) runIteration(ctx context.Context, iteration int, bars []types.PriceBar, strat strategy.Strategy, params map[string]float64) (float64, error) {
	rng := rand.New(rand.NewSource(r.config.Seed + int64(iteration)))
	resampled := resampleBars(bars, rng)

	engine := NewEngine(r.engineConfig, r.sizerConfig)
	result, err := engine.Run(ctx, resampled, strat, params)
	if err != nil {
		return 0, err
	}
	return result.TotalReturnPercent / 100, nil
}

// resampleBars samples bars with replacement, keeping the original
// timestamp sequence so the resampled series stays chronological.
func resampleBars(bars []types.PriceBar, rng *rand.Rand) []types.PriceBar {
	resampled := make([]types.PriceBar, len(bars))
	for i := range bars {
		bar := bars[rng.Intn(len(bars))]
		bar.Timestamp = bars[i].Timestamp
		resampled[i] = bar
	}
	return resampled
}

// summarize reduces the collected returns to distribution statistics
func (r *MonteCarloRunner) summarize(returns []float64) *MonteCarloResult {
	sort.Float64s(returns)

	result := &MonteCarloResult{
		Iterations:  len(returns),
		MeanReturn:  stats.Mean(returns),
		StdDev:      stats.StdDev(returns),
		Percentiles: make(map[int]float64, len(reportedPercentiles)),
		Returns:     returns,
	}
	if len(returns) > 0 {
		result.WorstCase = returns[0]
		result.BestCase = returns[len(returns)-1]
	}
	losses := 0
	for _, ret := range returns {
		if ret < 0 {
			losses++
		}
	}
	if len(returns) > 0 {
		result.ProbabilityOfLoss = float64(losses) / float64(len(returns))
	}
	for _, pct := range reportedPercentiles {
		result.Percentiles[pct] = stats.Percentile(returns, float64(pct))
	}
	return result
}
