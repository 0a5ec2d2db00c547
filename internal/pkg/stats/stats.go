// Package stats provides descriptive statistics over float64 columns.
package stats

import "sort"

// Mean calculates the arithmetic mean of values.
// Returns false when values is empty; the mean of an empty set is undefined.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Median calculates the 50th percentile of values.
func Median(values []float64) (float64, bool) {
	return Quantile(values, 0.5)
}

// Quantile calculates the q-th quantile (q in [0,1]) of values using
// linear interpolation between order statistics.
func Quantile(values []float64, q float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0], true
	}

	rank := q * float64(len(sorted)-1)
	lower := int(rank)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1], true
	}

	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower]), true
}

// Min returns the smallest value.
func Min(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

// Max returns the largest value.
func Max(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}
