// Package stats provides the pure statistics and risk-metric functions the
// backtester is built on. All functions are stateless and follow a single
// degenerate-input policy: inputs shorter than a calculation's minimum
// sample size, zero-variance series and zero denominators return 0 (or the
// documented sentinel) instead of an error, NaN or Inf, so downstream
// aggregation stays stable.
package stats

import (
	"math"
	"sort"
)

// zScores maps confidence levels to standard normal quantiles for
// parametric VaR. Unlisted confidence levels fall back to DefaultZScore.
var zScores = map[float64]float64{
	0.90:  1.282,
	0.95:  1.645,
	0.975: 1.960,
	0.99:  2.326,
	0.995: 2.576,
}

// DefaultZScore is used when a confidence level has no table entry
const DefaultZScore = 1.645

// entropyBins is the number of equal-width bins used for Shannon entropy
const entropyBins = 10

// Mean returns the arithmetic mean, or 0 for an empty series
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the sample variance (divisor n-1), or 0 when n < 2
func Variance(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mean := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(n-1)
}

// StdDev returns the sample standard deviation, or 0 when n < 2
func StdDev(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// Skewness returns the adjusted sample skewness, or 0 when n < 3 or the
// series has zero variance.
func Skewness(xs []float64) float64 {
	n := len(xs)
	if n < 3 {
		return 0
	}
	mean := Mean(xs)
	sd := StdDev(xs)
	if sd == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		z := (x - mean) / sd
		sum += z * z * z
	}
	nf := float64(n)
	return sum * nf / ((nf - 1) * (nf - 2))
}

// Kurtosis returns the sample excess kurtosis (normal distribution => 0),
// or 0 when n < 4 or the series has zero variance.
func Kurtosis(xs []float64) float64 {
	n := len(xs)
	if n < 4 {
		return 0
	}
	mean := Mean(xs)
	sd := StdDev(xs)
	if sd == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		z := (x - mean) / sd
		sum += z * z * z * z
	}
	nf := float64(n)
	term := nf * (nf + 1) / ((nf - 1) * (nf - 2) * (nf - 3))
	correction := 3 * (nf - 1) * (nf - 1) / ((nf - 2) * (nf - 3))
	return term*sum - correction
}

// Covariance returns the sample covariance of two equal-length series,
// or 0 on length mismatch or n < 2.
func Covariance(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0
	}
	meanX := Mean(xs)
	meanY := Mean(ys)
	sum := 0.0
	for i := range xs {
		sum += (xs[i] - meanX) * (ys[i] - meanY)
	}
	return sum / float64(n-1)
}

// Correlation returns the Pearson correlation coefficient, or 0 on length
// mismatch or when either series has zero variance.
func Correlation(xs, ys []float64) float64 {
	if len(xs) != len(ys) {
		return 0
	}
	sdX := StdDev(xs)
	sdY := StdDev(ys)
	if sdX == 0 || sdY == 0 {
		return 0
	}
	return Covariance(xs, ys) / (sdX * sdY)
}

// HistoricalVaR returns the percentile-based Value-at-Risk of a return
// series at the given confidence level: the return at index
// floor((1-confidence)*n) of the ascending sort. Empty input returns 0.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := sortedCopy(returns)
	idx := varIndex(len(sorted), confidence)
	return sorted[idx]
}

// ExpectedShortfall returns the mean of all returns at or below the
// historical VaR threshold. Empty input returns 0.
func ExpectedShortfall(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := sortedCopy(returns)
	idx := varIndex(len(sorted), confidence)
	return Mean(sorted[:idx+1])
}

// ParametricVaR returns mean - z(confidence) * stddev, using the z-score
// lookup table. Fewer than 2 returns yields 0.
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	z, ok := zScores[confidence]
	if !ok {
		z = DefaultZScore
	}
	return Mean(returns) - z*StdDev(returns)
}

// ShannonEntropy discretizes the series into 10 equal-width bins spanning
// [min,max] and returns -sum(p*log2(p)) over non-empty bins. A constant or
// empty series returns 0.
func ShannonEntropy(returns []float64) float64 {
	n := len(returns)
	if n == 0 {
		return 0
	}
	min, max := returns[0], returns[0]
	for _, r := range returns {
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}
	if max == min {
		return 0
	}
	width := (max - min) / entropyBins
	counts := make([]int, entropyBins)
	for _, r := range returns {
		bin := int((r - min) / width)
		if bin >= entropyBins {
			bin = entropyBins - 1
		}
		counts[bin]++
	}
	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(n)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// ShannonProbability returns the fraction of strictly positive values,
// or 0 for an empty series.
func ShannonProbability(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	positive := 0
	for _, r := range returns {
		if r > 0 {
			positive++
		}
	}
	return float64(positive) / float64(len(returns))
}

// EffectiveProbability discounts the Shannon probability by 1.96 standard
// errors and floors the result at 0.5, giving a conservative estimate of
// the directional edge.
func EffectiveProbability(returns []float64) float64 {
	n := len(returns)
	if n == 0 {
		return 0.5
	}
	p := ShannonProbability(returns)
	stderr := math.Sqrt(p * (1 - p) / float64(n))
	return math.Max(0.5, p-1.96*stderr)
}

// Percentile returns the value at the given percentile (0-100) of the
// series using the nearest-rank method. Empty input returns 0.
func Percentile(xs []float64, pct float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := sortedCopy(xs)
	idx := int(math.Floor(pct/100*float64(len(sorted)) + 1e-9))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func varIndex(n int, confidence float64) int {
	// the epsilon keeps exactly-representable products like 0.2*10 from
	// landing a hair below the integer and flooring one index short
	idx := int(math.Floor((1-confidence)*float64(n) + 1e-9))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

func sortedCopy(xs []float64) []float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return sorted
}
