package calculator

import (
	"errors"
	"math"
)

var errNonPositiveWindow = errors.New("window must be positive")

// nanSeries returns a slice of n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes the trailing simple moving average of values over window.
// The first window-1 entries are NaN, and every entry is NaN when values is
// shorter than window. A NaN inside a window makes that entry NaN.
func SMA(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errNonPositiveWindow
	}
	out := nanSeries(len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

// RollingStd computes the trailing sample standard deviation (n-1
// denominator) over window. A window of 1 yields NaN everywhere.
func RollingStd(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errNonPositiveWindow
	}
	out := nanSeries(len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		mean := sum / float64(window)

		sumSq := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			sumSq += d * d
		}
		out[i] = math.Sqrt(sumSq / float64(window-1))
	}
	return out, nil
}

// EMA computes the exponential moving average with alpha = 2/(span+1),
// seeded by the first observation. Every entry is defined.
func EMA(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// Mean returns the average of the non-NaN entries of values, and NaN when
// there are none.
func Mean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
