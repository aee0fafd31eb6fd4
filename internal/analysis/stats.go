// Package analysis computes insights, anomaly alerts, the financial
// health score and spend predictions over the normalized transaction
// list. All statistics run on float64; money leaves the package as
// decimals rounded by the callers.
package analysis

import (
	"math"
	"sort"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev is the n-1 denominator standard deviation. Returns 0 for
// fewer than two observations.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// coefVariation is stddev over mean, 0 when the mean is zero.
func coefVariation(xs []float64) float64 {
	m := mean(xs)
	if m == 0 {
		return 0
	}
	return sampleStdDev(xs) / m
}

// quantile computes the q-th quantile with linear interpolation between
// order statistics, matching the common statistical default.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// gini computes the Gini coefficient of a distribution: 0 for perfectly
// even shares, approaching 1 as one bucket dominates.
func gini(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	var total, weighted float64
	for i, x := range sorted {
		total += x
		weighted += (2*float64(i+1) - n - 1) * x
	}
	if total == 0 {
		return 0
	}
	return weighted / (n * total)
}

// leastSquares fits y = slope*x + intercept with x = 0..n-1.
func leastSquares(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, ys[0]
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, mean(ys)
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
