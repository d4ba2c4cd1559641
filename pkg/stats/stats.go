// Package stats provides the handful of descriptive statistics the audit
// modules share. Undefined values (empty input, zero variance) are returned
// as ok=false, never as zero or NaN.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean. ok is false for empty input.
func Mean(xs []float64) (mean float64, ok bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs)), true
}

// Median returns the median. ok is false for empty input.
func Median(xs []float64) (median float64, ok bool) {
	n := len(xs)
	if n == 0 {
		return 0, false
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// StdDev returns the population standard deviation. ok is false for empty
// input.
func StdDev(xs []float64) (sd float64, ok bool) {
	mean, ok := Mean(xs)
	if !ok {
		return 0, false
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs))), true
}

// Pearson returns the Pearson correlation coefficient between xs and ys.
// ok is false when the lengths differ, fewer than two samples exist, or
// either series has zero variance.
func Pearson(xs, ys []float64) (r float64, ok bool) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, false
	}
	mx, _ := Mean(xs)
	my, _ := Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}
