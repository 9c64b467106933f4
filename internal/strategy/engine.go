package strategy

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"StockRanker/internal/calculator"
	"StockRanker/internal/model"
)

// Mode selects how indicator contributions are combined.
type Mode string

const (
	// ModeParity sums the raw contributions. The RSI mean (0-100) dominates
	// the other terms; this is kept so scores stay comparable with earlier runs.
	ModeParity Mode = "parity"
	// ModeNormalized rescales RSI to 0-1 and the MACD spread by the last close.
	ModeNormalized Mode = "normalized"
)

// ParseMode converts a config or flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeParity:
		return ModeParity, nil
	case ModeNormalized:
		return ModeNormalized, nil
	}
	return "", fmt.Errorf("unknown scoring mode %q", s)
}

// Params holds the indicator parameters and the scoring mode.
type Params struct {
	RSIWindow       int
	MACDShort       int
	MACDLong        int
	MACDSignal      int
	BollingerWindow int
	BollingerK      float64
	SAR             calculator.SARParams
	Mode            Mode
}

// DefaultParams returns the conventional indicator settings in parity mode.
func DefaultParams() Params {
	return Params{
		RSIWindow:       calculator.DefaultRSIWindow,
		MACDShort:       calculator.DefaultMACDShort,
		MACDLong:        calculator.DefaultMACDLong,
		MACDSignal:      calculator.DefaultMACDSignal,
		BollingerWindow: calculator.DefaultBollingerWindow,
		BollingerK:      calculator.DefaultBollingerK,
		SAR:             calculator.DefaultSARParams(),
		Mode:            ModeParity,
	}
}

// Validate rejects parameter sets the calculators cannot use.
func (p Params) Validate() error {
	if p.RSIWindow <= 0 || p.BollingerWindow <= 0 {
		return errors.New("indicator windows must be positive")
	}
	if p.MACDShort <= 0 || p.MACDLong <= 0 || p.MACDSignal <= 0 {
		return errors.New("macd spans must be positive")
	}
	if p.BollingerK < 0 {
		return errors.New("bollinger multiplier must not be negative")
	}
	if p.SAR.Step <= 0 || p.SAR.MaxStep < p.SAR.Step {
		return errors.New("sar step must be positive and not above max step")
	}
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	return nil
}

// FailureHook is notified of every failed contribution.
type FailureHook func(symbol string, err *model.IndicatorError)

// Engine scores symbols from their OHLC series.
type Engine struct {
	params    Params
	onFailure FailureHook
}

// NewEngine creates an Engine. onFailure may be nil.
func NewEngine(params Params, onFailure FailureHook) *Engine {
	return &Engine{params: params, onFailure: onFailure}
}

func (e *Engine) Params() Params { return e.params }

// Evaluate computes the four indicators and the composite score of a series.
// A failing indicator contributes 0 and is reported on the result; it never
// fails the whole evaluation.
func (e *Engine) Evaluate(ser model.Series) model.SymbolScore {
	set := &model.IndicatorSet{Dates: ser.Dates()}
	contribs := []model.Contribution{
		scoreRSI(ser, e.params, set),
		scoreMACD(ser, e.params, set),
		scoreBollinger(ser, e.params, set),
		scoreSAR(ser, e.params, set),
	}

	score := model.SymbolScore{
		Symbol:        ser.Symbol,
		Contributions: contribs,
		Indicators:    set,
	}
	for i, c := range contribs {
		if c.OK() {
			score.Total += c.Value
			continue
		}
		var ie *model.IndicatorError
		if !errors.As(c.Err, &ie) {
			ie = &model.IndicatorError{Indicator: c.Indicator, Err: c.Err}
			contribs[i].Err = ie
		}
		log.Warn().Str("symbol", ser.Symbol).Str("indicator", string(c.Indicator)).
			Err(ie.Err).Msg("indicator contribution dropped")
		if e.onFailure != nil {
			e.onFailure(ser.Symbol, ie)
		}
	}
	return score
}
