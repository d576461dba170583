package stats

import (
	"math"
)

// DefaultPeriodsPerYear is the trading-day annualization factor
const DefaultPeriodsPerYear = 252

// Drawdown describes the maximum peak-to-trough decline of a value series
type Drawdown struct {
	Max         float64 `json:"max"`
	PeakIndex   int     `json:"peak_index"`
	TroughIndex int     `json:"trough_index"`
	Duration    int     `json:"duration"`
}

// SharpeRatio returns the annualized Sharpe ratio of a per-period return
// series against the given annual risk-free rate. Zero volatility yields 0.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	sd := StdDev(returns)
	if sd == 0 {
		return 0
	}
	n := float64(periodsPerYear)
	return (Mean(returns)*n - riskFreeRate) / (sd * math.Sqrt(n))
}

// SortinoRatio is like Sharpe but penalizes only downside volatility:
// the denominator is the deviation of returns below targetReturn scaled to
// per-period terms. Zero downside deviation yields 0.
func SortinoRatio(returns []float64, targetReturn float64, periodsPerYear int) float64 {
	dd := DownsideDeviation(returns, targetReturn, periodsPerYear)
	if dd == 0 {
		return 0
	}
	n := float64(periodsPerYear)
	return (Mean(returns)*n - targetReturn) / (dd * math.Sqrt(n))
}

// DownsideDeviation returns the root mean square of shortfalls below the
// per-period target (annual targetReturn / periodsPerYear).
func DownsideDeviation(returns []float64, targetReturn float64, periodsPerYear int) float64 {
	if len(returns) == 0 {
		return 0
	}
	target := targetReturn / float64(periodsPerYear)
	sum := 0.0
	for _, r := range returns {
		if r < target {
			d := r - target
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(len(returns)))
}

// MaxDrawdown scans a value series left to right tracking the running peak
// and returns the maximum drawdown encountered with its peak and trough
// indices. Fewer than 2 values yields a zero drawdown.
func MaxDrawdown(values []float64) Drawdown {
	if len(values) < 2 {
		return Drawdown{}
	}
	result := Drawdown{}
	peak := values[0]
	peakIdx := 0
	for i, v := range values {
		if v > peak {
			peak = v
			peakIdx = i
			continue
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - v) / peak
		if dd > result.Max {
			result.Max = dd
			result.PeakIndex = peakIdx
			result.TroughIndex = i
			result.Duration = i - peakIdx
		}
	}
	return result
}

// AnnualizedReturn returns the compound annual growth rate implied by a
// value series of per-period observations. Degenerate inputs yield 0.
func AnnualizedReturn(values []float64, periodsPerYear int) float64 {
	n := len(values)
	if n < 2 || values[0] <= 0 || values[n-1] <= 0 {
		return 0
	}
	periods := float64(n - 1)
	return math.Pow(values[n-1]/values[0], float64(periodsPerYear)/periods) - 1
}

// CalmarRatio returns the annualized return of a value series divided by
// the magnitude of its maximum drawdown, or 0 when the drawdown is 0.
func CalmarRatio(values []float64, periodsPerYear int) float64 {
	dd := MaxDrawdown(values)
	if dd.Max == 0 {
		return 0
	}
	return AnnualizedReturn(values, periodsPerYear) / dd.Max
}

// Beta returns covariance(asset, market) / variance(market), or 0 on
// length mismatch or zero market variance.
func Beta(assetReturns, marketReturns []float64) float64 {
	if len(assetReturns) != len(marketReturns) {
		return 0
	}
	marketVar := Variance(marketReturns)
	if marketVar == 0 {
		return 0
	}
	return Covariance(assetReturns, marketReturns) / marketVar
}

// TreynorRatio returns the annualized excess return per unit of market
// beta, or 0 when beta is 0.
func TreynorRatio(assetReturns, marketReturns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	beta := Beta(assetReturns, marketReturns)
	if beta == 0 {
		return 0
	}
	return (Mean(assetReturns)*float64(periodsPerYear) - riskFreeRate) / beta
}

// InformationRatio returns the annualized mean active return over its
// tracking error, or 0 on length mismatch or zero tracking error.
func InformationRatio(assetReturns, benchmarkReturns []float64, periodsPerYear int) float64 {
	if len(assetReturns) != len(benchmarkReturns) {
		return 0
	}
	active := make([]float64, len(assetReturns))
	for i := range assetReturns {
		active[i] = assetReturns[i] - benchmarkReturns[i]
	}
	te := StdDev(active)
	if te == 0 {
		return 0
	}
	n := float64(periodsPerYear)
	return Mean(active) * n / (te * math.Sqrt(n))
}

// AnnualizedVolatility scales per-period return volatility to annual terms
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	return StdDev(returns) * math.Sqrt(float64(periodsPerYear))
}

// CorrelationMatrix computes the pairwise Pearson correlation of the named
// return series. The result is symmetric with a unit diagonal.
func CorrelationMatrix(returnsByName map[string][]float64) map[string]map[string]float64 {
	matrix := make(map[string]map[string]float64, len(returnsByName))
	for name := range returnsByName {
		matrix[name] = make(map[string]float64, len(returnsByName))
		matrix[name][name] = 1.0
	}
	for a, xs := range returnsByName {
		for b, ys := range returnsByName {
			if a == b {
				continue
			}
			matrix[a][b] = Correlation(xs, ys)
		}
	}
	return matrix
}
