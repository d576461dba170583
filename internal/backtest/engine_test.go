package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantbt/internal/sizing"
	"quantbt/internal/strategy"
	"quantbt/internal/types"
)

// scriptedStrategy emits pre-programmed signals at fixed bar indices
type scriptedStrategy struct {
	signalsAt map[int][]types.Signal
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) GetSignals(bars []types.PriceBar, params map[string]float64) []types.Signal {
	return s.signalsAt[len(bars)-1]
}

func (s *scriptedStrategy) ParameterRanges() map[string]strategy.Range {
	return map[string]strategy.Range{}
}

func testBars(closes []float64) []types.PriceBar {
	bars := make([]types.PriceBar, len(closes))
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = types.PriceBar{
			Symbol:    "TEST",
			Timestamp: start.AddDate(0, 0, i),
			Open:      c, High: c, Low: c, Close: c,
			Volume: 1000,
		}
	}
	return bars
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.InitialCapital = 10000
	cfg.Commission = 0.001
	cfg.Slippage = 0.0005
	return cfg
}

func TestRunBuyThenSellScenario(t *testing.T) {
	// closes [100,102,101,105,103]: buy $1000 fixed-dollar on bar 0,
	// sell all on bar 4, commission 0.001, slippage 0.0005
	bars := testBars([]float64{100, 102, 101, 105, 103})
	strat := &scriptedStrategy{signalsAt: map[int][]types.Signal{
		0: {types.NewBuySignal("TEST", types.SizingFixedDollar, 1000, "enter")},
		4: {types.NewSellSignal("TEST", "exit")},
	}}

	engine := NewEngine(testConfig(), sizing.DefaultConfig())
	result, err := engine.Run(context.Background(), bars, strat, nil)
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	buy, sell := result.Trades[0], result.Trades[1]

	// buy: 10 shares at 100*(1+0.0005) = 100.05
	assert.Equal(t, 10, buy.Quantity)
	assert.InDelta(t, 100.05, buy.ExecutionPrice, 1e-6)

	// sell: all 10 at 103*(1-0.0005) = 102.9485
	assert.Equal(t, 10, sell.Quantity)
	assert.InDelta(t, 102.9485, sell.ExecutionPrice, 1e-6)
	assert.InDelta(t, (102.9485-100.05)*10, sell.RealizedPnL, 1e-6)

	// final cash = 10000 - 10*100.05*1.001 + 10*102.9485*0.999
	expectedCash := 10000.0 - 1001.5005 + 1028.455515
	assert.InDelta(t, expectedCash, result.FinalCash, 1e-6)
	assert.InDelta(t, expectedCash, result.FinalCapital, 1e-6)
	assert.Empty(t, result.FinalPositions)

	assert.Len(t, result.EquityCurve, 5)
	assert.Equal(t, 2, result.TotalTrades)
}

func TestRunCashConservation(t *testing.T) {
	bars := testBars([]float64{100, 98, 103, 101, 107, 104, 109, 102})
	strat := &scriptedStrategy{signalsAt: map[int][]types.Signal{
		0: {types.NewBuySignal("TEST", types.SizingPercentCapital, 40, "enter")},
		2: {types.NewBuySignal("TEST", types.SizingPercentCapital, 30, "add")},
		4: {types.NewSellSignal("TEST", "trim").WithQuantity(5)},
		7: {types.NewSellSignal("TEST", "exit")},
	}}

	cfg := testConfig()
	engine := NewEngine(cfg, sizing.DefaultConfig())
	result, err := engine.Run(context.Background(), bars, strat, nil)
	require.NoError(t, err)

	var outflow, inflow, commission float64
	for _, trade := range result.Trades {
		commission += trade.Commission
		if trade.IsBuy() {
			outflow += trade.GrossAmount
		} else {
			inflow += trade.GrossAmount
		}
	}
	assert.InDelta(t, outflow-inflow+commission, cfg.InitialCapital-result.FinalCash, 1e-6)
}

func TestRunEquityPointsReconcile(t *testing.T) {
	closes := []float64{100, 98, 103, 101, 107, 104}
	bars := testBars(closes)
	strat := &scriptedStrategy{signalsAt: map[int][]types.Signal{
		1: {types.NewBuySignal("TEST", types.SizingPercentCapital, 50, "enter")},
	}}

	engine := NewEngine(testConfig(), sizing.DefaultConfig())
	result, err := engine.Run(context.Background(), bars, strat, nil)
	require.NoError(t, err)

	// total value at each bar = cash + shares marked at that bar's close
	for i, point := range result.EquityCurve {
		held := 0.0
		for _, pos := range point.Positions {
			held += float64(pos.Quantity) * closes[i]
		}
		assert.InDelta(t, point.Cash+held, point.TotalValue, 1e-9)
	}
}

func TestRejectedOrdersAreObservable(t *testing.T) {
	bars := testBars([]float64{100, 102, 104})
	strat := &scriptedStrategy{signalsAt: map[int][]types.Signal{
		// buy far beyond available cash, sell with no position
		0: {types.NewBuySignal("TEST", types.SizingFixedDollar, 1e9, "too big").WithQuantity(1000000)},
		1: {types.NewSellSignal("TEST", "nothing held")},
	}}

	cfg := testConfig()
	engine := NewEngine(cfg, sizing.DefaultConfig())
	result, err := engine.Run(context.Background(), bars, strat, nil)
	require.NoError(t, err)

	// both orders rejected: no trades, cash untouched, run still completes
	assert.Empty(t, result.Trades)
	assert.InDelta(t, cfg.InitialCapital, result.FinalCash, 1e-9)
	assert.Equal(t, 0.0, result.TotalReturn)
}

func TestRunIsDeterministic(t *testing.T) {
	bars := testBars([]float64{100, 98, 103, 101, 107, 104, 109, 102})
	strat := &scriptedStrategy{signalsAt: map[int][]types.Signal{
		0: {types.NewBuySignal("TEST", types.SizingPercentCapital, 40, "enter")},
		7: {types.NewSellSignal("TEST", "exit")},
	}}

	engine := NewEngine(testConfig(), sizing.DefaultConfig())
	first, err := engine.Run(context.Background(), bars, strat, nil)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), bars, strat, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Trades, second.Trades)
	assert.Equal(t, first.EquityCurve, second.EquityCurve)
	assert.Equal(t, first.FinalCash, second.FinalCash)
	assert.Equal(t, first.SharpeRatio, second.SharpeRatio)
}

func TestRunEmptyBarsProducesFlatResult(t *testing.T) {
	engine := NewEngine(testConfig(), sizing.DefaultConfig())
	result, err := engine.Run(context.Background(), nil, &scriptedStrategy{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalTrades)
	assert.Equal(t, 0.0, result.TotalReturn)
	assert.Equal(t, 10000.0, result.FinalCapital)
}

func TestRunInvalidConfigIsError(t *testing.T) {
	cfg := testConfig()
	cfg.InitialCapital = 0
	engine := NewEngine(cfg, sizing.DefaultConfig())
	_, err := engine.Run(context.Background(), testBars([]float64{100}), &scriptedStrategy{}, nil)
	assert.Error(t, err)
}

func TestRunUnsupportedSizingMethodIsError(t *testing.T) {
	bars := testBars([]float64{100, 102})
	strat := &scriptedStrategy{signalsAt: map[int][]types.Signal{
		0: {types.NewBuySignal("TEST", "martingale", 10, "bad")},
	}}

	engine := NewEngine(testConfig(), sizing.DefaultConfig())
	_, err := engine.Run(context.Background(), bars, strat, nil)
	assert.Error(t, err)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(testConfig(), sizing.DefaultConfig())
	_, err := engine.Run(ctx, testBars([]float64{100, 101}), &scriptedStrategy{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMultiSymbolMarkToMarket(t *testing.T) {
	// Interleaved bars for two symbols: each position is valued at its
	// own last-seen close, not the current bar's symbol price.
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := []types.PriceBar{
		{Symbol: "AAA", Timestamp: start, Open: 100, High: 100, Low: 100, Close: 100, Volume: 1},
		{Symbol: "BBB", Timestamp: start.AddDate(0, 0, 1), Open: 50, High: 50, Low: 50, Close: 50, Volume: 1},
		{Symbol: "BBB", Timestamp: start.AddDate(0, 0, 2), Open: 60, High: 60, Low: 60, Close: 60, Volume: 1},
	}
	strat := &scriptedStrategy{signalsAt: map[int][]types.Signal{
		0: {types.NewBuySignal("AAA", types.SizingFixedDollar, 1000, "enter").WithQuantity(10)},
	}}

	cfg := testConfig()
	cfg.Commission = 0
	cfg.Slippage = 0
	engine := NewEngine(cfg, sizing.DefaultConfig())
	result, err := engine.Run(context.Background(), bars, strat, nil)
	require.NoError(t, err)

	// AAA never prints again; its 10 shares stay valued at 100 while BBB
	// bars arrive
	last := result.EquityCurve[len(result.EquityCurve)-1]
	assert.InDelta(t, (10000.0-1000.0)+10*100, last.TotalValue, 1e-9)
}
