package calculator

import "errors"

const (
	DefaultBollingerWindow = 20
	DefaultBollingerK      = 2.0
)

// BollingerBands holds the band series. Entries before the window fills are NaN.
type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes bands at k sample standard deviations around the
// rolling mean of closes.
func Bollinger(closes []float64, window int, k float64) (BollingerBands, error) {
	if k < 0 {
		return BollingerBands{}, errors.New("band multiplier must not be negative")
	}
	mean, err := SMA(closes, window)
	if err != nil {
		return BollingerBands{}, err
	}
	std, err := RollingStd(closes, window)
	if err != nil {
		return BollingerBands{}, err
	}

	upper := make([]float64, len(closes))
	lower := make([]float64, len(closes))
	for i := range closes {
		upper[i] = mean[i] + k*std[i]
		lower[i] = mean[i] - k*std[i]
	}
	return BollingerBands{Upper: upper, Middle: mean, Lower: lower}, nil
}
