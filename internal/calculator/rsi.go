package calculator

// DefaultRSIWindow is the conventional RSI lookback.
const DefaultRSIWindow = 14

// RSI computes the relative strength index over a trailing simple average of
// gains and losses. The first close has no predecessor and counts as a zero
// change. Entries before the window fills are NaN.
//
// A window with no losses saturates at 100. A window with neither gains nor
// losses is indeterminate and yields NaN.
func RSI(closes []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errNonPositiveWindow
	}
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	avgGain, err := SMA(gains, window)
	if err != nil {
		return nil, err
	}
	avgLoss, err := SMA(losses, window)
	if err != nil {
		return nil, err
	}

	rsi := make([]float64, len(closes))
	for i := range rsi {
		rs := avgGain[i] / avgLoss[i]
		rsi[i] = 100 - 100/(1+rs)
	}
	return rsi, nil
}
