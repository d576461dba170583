package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharpeRatioManual(t *testing.T) {
	// Manual computation of the stated formula must match to 1e-9
	returns := []float64{0.01, -0.005, 0.02, 0.0, -0.01}
	riskFree := 0.02

	mean := Mean(returns)
	sd := StdDev(returns)
	expected := (mean*252 - riskFree) / (sd * math.Sqrt(252))

	assert.InDelta(t, expected, SharpeRatio(returns, riskFree, 252), 1e-9)
}

func TestSharpeRatioDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.01, 0.01, 0.01}, 0.02, 252))
	assert.Equal(t, 0.0, SharpeRatio(nil, 0.02, 252))
}

func TestSortinoRatio(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.02, 0.01}

	// Downside deviation only counts returns below the per-period target
	target := 0.0
	sumSq := 0.01*0.01 + 0.02*0.02
	expectedDD := math.Sqrt(sumSq / 5)
	assert.InDelta(t, expectedDD, DownsideDeviation(returns, target, 252), 1e-12)

	expected := (Mean(returns)*252 - target) / (expectedDD * math.Sqrt(252))
	assert.InDelta(t, expected, SortinoRatio(returns, target, 252), 1e-12)

	// All returns above target: zero downside deviation, ratio 0
	assert.Equal(t, 0.0, SortinoRatio([]float64{0.01, 0.02, 0.03}, 0.0, 252))
}

func TestMaxDrawdown(t *testing.T) {
	// Peak at 120 (index 1), trough at 84 (index 3): 30% drawdown
	values := []float64{100, 120, 100, 84, 110, 130}
	dd := MaxDrawdown(values)
	assert.InDelta(t, 0.30, dd.Max, 1e-12)
	assert.Equal(t, 1, dd.PeakIndex)
	assert.Equal(t, 3, dd.TroughIndex)
	assert.Equal(t, 2, dd.Duration)
}

func TestMaxDrawdownBoundary(t *testing.T) {
	assert.Equal(t, Drawdown{}, MaxDrawdown(nil))
	assert.Equal(t, Drawdown{}, MaxDrawdown([]float64{100}))

	// Monotonically rising curve never draws down
	dd := MaxDrawdown([]float64{100, 110, 120, 130})
	assert.Equal(t, 0.0, dd.Max)
}

func TestAnnualizedReturn(t *testing.T) {
	// 253 values = 252 periods = exactly one year
	values := make([]float64, 253)
	for i := range values {
		values[i] = 100 * math.Pow(1.10, float64(i)/252)
	}
	assert.InDelta(t, 0.10, AnnualizedReturn(values, 252), 1e-9)

	assert.Equal(t, 0.0, AnnualizedReturn([]float64{100}, 252))
	assert.Equal(t, 0.0, AnnualizedReturn(nil, 252))
}

func TestCalmarRatio(t *testing.T) {
	values := []float64{100, 120, 100, 84, 110, 130}
	dd := MaxDrawdown(values)
	expected := AnnualizedReturn(values, 252) / dd.Max
	assert.InDelta(t, expected, CalmarRatio(values, 252), 1e-12)

	// No drawdown: ratio defined as 0
	assert.Equal(t, 0.0, CalmarRatio([]float64{100, 110, 120}, 252))
}

func TestBeta(t *testing.T) {
	market := []float64{0.01, -0.02, 0.03, -0.01, 0.02}

	// An asset moving at exactly twice the market has beta 2
	asset := make([]float64, len(market))
	for i, m := range market {
		asset[i] = 2 * m
	}
	assert.InDelta(t, 2.0, Beta(asset, market), 1e-12)

	assert.Equal(t, 0.0, Beta(asset, []float64{0.01, 0.02}))
	assert.Equal(t, 0.0, Beta(asset, []float64{0.01, 0.01, 0.01, 0.01, 0.01}))
}

func TestTreynorRatio(t *testing.T) {
	market := []float64{0.01, -0.02, 0.03, -0.01, 0.02}
	asset := []float64{0.02, -0.04, 0.06, -0.02, 0.04}
	expected := (Mean(asset)*252 - 0.02) / Beta(asset, market)
	assert.InDelta(t, expected, TreynorRatio(asset, market, 0.02, 252), 1e-12)

	// Zero beta yields 0
	flat := []float64{0.01, 0.01, 0.01, 0.01, 0.01}
	assert.Equal(t, 0.0, TreynorRatio(asset, flat, 0.02, 252))
}

func TestInformationRatio(t *testing.T) {
	asset := []float64{0.02, -0.01, 0.03, 0.0, 0.01}
	bench := []float64{0.01, -0.02, 0.02, 0.01, 0.0}
	active := []float64{0.01, 0.01, 0.01, -0.01, 0.01}
	expected := Mean(active) * 252 / (StdDev(active) * math.Sqrt(252))
	assert.InDelta(t, expected, InformationRatio(asset, bench, 252), 1e-12)

	// Identical series: zero tracking error, ratio 0
	assert.Equal(t, 0.0, InformationRatio(asset, asset, 252))
	assert.Equal(t, 0.0, InformationRatio(asset, []float64{0.01}, 252))
}

func TestCorrelationMatrix(t *testing.T) {
	returns := map[string][]float64{
		"AAA": {0.01, -0.02, 0.03, -0.01},
		"BBB": {0.02, -0.04, 0.06, -0.02},
		"CCC": {-0.01, 0.02, -0.03, 0.01},
	}
	matrix := CorrelationMatrix(returns)

	for name := range returns {
		assert.Equal(t, 1.0, matrix[name][name])
	}
	assert.InDelta(t, 1.0, matrix["AAA"]["BBB"], 1e-12)
	assert.InDelta(t, -1.0, matrix["AAA"]["CCC"], 1e-12)
	assert.InDelta(t, matrix["AAA"]["BBB"], matrix["BBB"]["AAA"], 1e-12)
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.005, 0.02, 0.0, -0.01}
	expected := StdDev(returns) * math.Sqrt(252)
	assert.InDelta(t, expected, AnnualizedVolatility(returns, 252), 1e-12)
}
