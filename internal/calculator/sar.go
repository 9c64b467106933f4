package calculator

import (
	"errors"
	"math"

	"StockRanker/internal/model"
)

const (
	DefaultSARStep    = 0.02
	DefaultSARMaxStep = 0.2
)

// SARParams configures the acceleration factor of the Parabolic SAR.
type SARParams struct {
	Step    float64
	MaxStep float64
}

// DefaultSARParams returns the conventional 0.02 / 0.2 parameters.
func DefaultSARParams() SARParams {
	return SARParams{Step: DefaultSARStep, MaxStep: DefaultSARMaxStep}
}

func (p SARParams) validate() error {
	if p.Step <= 0 {
		return errors.New("sar step must be positive")
	}
	if p.MaxStep < p.Step {
		return errors.New("sar max step must be >= step")
	}
	return nil
}

// SARState is the carried state of the Parabolic SAR recurrence.
type SARState struct {
	SAR   float64
	EP    float64 // extreme point since the last reversal
	AF    float64 // acceleration factor
	Trend model.Trend
}

// SeedSAR returns the initial state for the first bar: the SAR starts at the
// first close, the extreme point at the first high, trending up.
func SeedSAR(high, close float64, p SARParams) SARState {
	return SARState{SAR: close, EP: high, AF: p.Step, Trend: model.TrendUp}
}

// Next advances the state by one bar and returns the new state.
func (s SARState) Next(high, low, close float64, p SARParams) SARState {
	n := s
	n.SAR = s.SAR + s.AF*(s.EP-s.SAR)

	reversed := false
	if s.Trend == model.TrendUp {
		if close > n.EP {
			n.EP = close
		}
		if low < n.SAR {
			n.Trend = model.TrendDown
			n.SAR = n.EP
			n.EP = low
			n.AF = p.Step
			reversed = true
		}
	} else {
		if close < n.EP {
			n.EP = close
		}
		if high > n.SAR {
			n.Trend = model.TrendUp
			n.SAR = n.EP
			n.EP = high
			n.AF = p.Step
			reversed = true
		}
	}

	if !reversed {
		n.AF = math.Min(n.AF+p.Step, p.MaxStep)
	}
	return n
}

// SARResult holds the SAR value and trend of every bar.
type SARResult struct {
	Values []float64
	Trends []model.Trend
}

// ParabolicSAR folds SARState.Next over the bars. The columns must have
// equal length. An empty input yields empty output.
func ParabolicSAR(highs, lows, closes []float64, p SARParams) (SARResult, error) {
	if err := p.validate(); err != nil {
		return SARResult{}, err
	}
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return SARResult{}, errors.New("high, low and close must have equal length")
	}

	res := SARResult{
		Values: make([]float64, len(closes)),
		Trends: make([]model.Trend, len(closes)),
	}
	if len(closes) == 0 {
		return res, nil
	}

	state := SeedSAR(highs[0], closes[0], p)
	res.Values[0] = state.SAR
	res.Trends[0] = state.Trend
	for i := 1; i < len(closes); i++ {
		state = state.Next(highs[i], lows[i], closes[i], p)
		res.Values[i] = state.SAR
		res.Trends[i] = state.Trend
	}
	return res, nil
}
