package strategy

import (
	"fmt"
	"math"

	"StockRanker/internal/calculator"
	"StockRanker/internal/model"
)

func failed(ind model.Indicator, err error) model.Contribution {
	return model.Contribution{Indicator: ind, Err: &model.IndicatorError{Indicator: ind, Err: err}}
}

func needRows(ser model.Series, rows int) error {
	if ser.Len() < rows {
		return fmt.Errorf("%w: have %d rows, need %d", model.ErrInsufficientHistory, ser.Len(), rows)
	}
	return nil
}

// finite turns a raw contribution into a result, failing on NaN or ±Inf.
func finite(ind model.Indicator, v float64) model.Contribution {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return failed(ind, fmt.Errorf("%w: %v", model.ErrNonFinite, v))
	}
	return model.Contribution{Indicator: ind, Value: v}
}

// scoreRSI contributes the mean of all defined RSI values.
func scoreRSI(ser model.Series, p Params, set *model.IndicatorSet) model.Contribution {
	if err := needRows(ser, p.RSIWindow); err != nil {
		return failed(model.IndicatorRSI, err)
	}
	rsi, err := calculator.RSI(ser.Closes(), p.RSIWindow)
	if err != nil {
		return failed(model.IndicatorRSI, err)
	}
	set.RSI = rsi

	v := calculator.Mean(rsi)
	if p.Mode == ModeNormalized {
		v /= 100
	}
	return finite(model.IndicatorRSI, v)
}

// scoreMACD contributes mean(MACD) - mean(Signal).
func scoreMACD(ser model.Series, p Params, set *model.IndicatorSet) model.Contribution {
	if err := needRows(ser, 1); err != nil {
		return failed(model.IndicatorMACD, err)
	}
	res, err := calculator.MACD(ser.Closes(), p.MACDShort, p.MACDLong, p.MACDSignal)
	if err != nil {
		return failed(model.IndicatorMACD, err)
	}
	set.MACD, set.Signal = res.MACD, res.Signal

	v := calculator.Mean(res.MACD) - calculator.Mean(res.Signal)
	if p.Mode == ModeNormalized {
		last, _ := ser.LastClose()
		v /= last
	}
	return finite(model.IndicatorMACD, v)
}

// scoreBollinger contributes where the last close sits inside the last band
// range. A zero-width band is not guarded and fails as non-finite.
func scoreBollinger(ser model.Series, p Params, set *model.IndicatorSet) model.Contribution {
	if err := needRows(ser, p.BollingerWindow); err != nil {
		return failed(model.IndicatorBollinger, err)
	}
	bands, err := calculator.Bollinger(ser.Closes(), p.BollingerWindow, p.BollingerK)
	if err != nil {
		return failed(model.IndicatorBollinger, err)
	}
	set.BollingerHigh, set.BollingerLow = bands.Upper, bands.Lower

	n := ser.Len() - 1
	last, _ := ser.LastClose()
	v := (last - bands.Lower[n]) / (bands.Upper[n] - bands.Lower[n])
	return finite(model.IndicatorBollinger, v)
}

// scoreSAR contributes the distance of the last close above the last SAR,
// relative to the close.
func scoreSAR(ser model.Series, p Params, set *model.IndicatorSet) model.Contribution {
	if err := needRows(ser, 1); err != nil {
		return failed(model.IndicatorSAR, err)
	}
	res, err := calculator.ParabolicSAR(ser.Highs(), ser.Lows(), ser.Closes(), p.SAR)
	if err != nil {
		return failed(model.IndicatorSAR, err)
	}
	set.SAR, set.Trend = res.Values, res.Trends

	last, _ := ser.LastClose()
	v := (last - res.Values[len(res.Values)-1]) / last
	return finite(model.IndicatorSAR, v)
}
