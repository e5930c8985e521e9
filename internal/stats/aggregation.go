package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// MeanStdDev returns the mean and the population standard deviation.
// Cell counts cover every non-empty cell, so there is no sample to correct for.
func MeanStdDev(values []float64) (mean, stddev float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// Sum returns the sum of all values
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// MinMax returns the smallest and largest value
func MinMax(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return floats.Min(values), floats.Max(values)
}

// MinMaxNormalize rescales v into [0, 1] against [min, max]. A degenerate
// range (every value equal) maps nonzero values to 1 and zero to 0.
func MinMaxNormalize(v, min, max float64) float64 {
	if max == min {
		if v != 0 {
			return 1
		}
		return 0
	}
	return (v - min) / (max - min)
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
