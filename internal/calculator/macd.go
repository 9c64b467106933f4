package calculator

import "errors"

const (
	DefaultMACDShort  = 12
	DefaultMACDLong   = 26
	DefaultMACDSignal = 9
)

// MACDResult holds the MACD line and its signal line.
type MACDResult struct {
	MACD   []float64
	Signal []float64
}

// MACD computes the difference of the short and long EMAs of closes and the
// EMA of that difference over the signal span. Both lines are defined from
// the first observation.
func MACD(closes []float64, short, long, signal int) (MACDResult, error) {
	if short <= 0 || long <= 0 || signal <= 0 {
		return MACDResult{}, errors.New("macd spans must be positive")
	}
	shortEMA, err := EMA(closes, short)
	if err != nil {
		return MACDResult{}, err
	}
	longEMA, err := EMA(closes, long)
	if err != nil {
		return MACDResult{}, err
	}

	line := make([]float64, len(closes))
	for i := range line {
		line[i] = shortEMA[i] - longEMA[i]
	}
	sig, err := EMA(line, signal)
	if err != nil {
		return MACDResult{}, err
	}
	return MACDResult{MACD: line, Signal: sig}, nil
}
