package model

import "time"

// Indicator names one of the four scored indicators.
type Indicator string

const (
	IndicatorRSI       Indicator = "rsi"
	IndicatorMACD      Indicator = "macd"
	IndicatorBollinger Indicator = "bollinger"
	IndicatorSAR       Indicator = "sar"
)

// Indicators lists every scored indicator in scoring order.
var Indicators = []Indicator{IndicatorRSI, IndicatorMACD, IndicatorBollinger, IndicatorSAR}

// Trend is the directional state of the Parabolic SAR.
type Trend int

const (
	TrendUp   Trend = 1
	TrendDown Trend = -1
)

func (t Trend) String() string {
	if t == TrendDown {
		return "down"
	}
	return "up"
}

// IndicatorSet holds the computed output series of one symbol, aligned 1:1
// with Dates. A nil slice means the indicator was not computed; NaN entries
// mean "no value".
type IndicatorSet struct {
	Dates         []time.Time
	RSI           []float64
	MACD          []float64
	Signal        []float64
	BollingerHigh []float64
	BollingerLow  []float64
	SAR           []float64
	Trend         []Trend
}

// Line is one named output series, ready for rendering.
type Line struct {
	Name      string
	Indicator Indicator
	Values    []float64
	Markers   bool
}

// Lines returns the computed series in chart order, skipping the ones that
// were not computed.
func (s *IndicatorSet) Lines() []Line {
	if s == nil {
		return nil
	}
	all := []Line{
		{Name: "RSI", Indicator: IndicatorRSI, Values: s.RSI},
		{Name: "MACD", Indicator: IndicatorMACD, Values: s.MACD},
		{Name: "Signal Line", Indicator: IndicatorMACD, Values: s.Signal},
		{Name: "Bollinger High", Indicator: IndicatorBollinger, Values: s.BollingerHigh},
		{Name: "Bollinger Low", Indicator: IndicatorBollinger, Values: s.BollingerLow},
		{Name: "Parabolic SAR", Indicator: IndicatorSAR, Values: s.SAR, Markers: true},
	}
	lines := make([]Line, 0, len(all))
	for _, l := range all {
		if l.Values != nil {
			lines = append(lines, l)
		}
	}
	return lines
}

// Series returns the name to series mapping used by reporting collaborators.
func (s *IndicatorSet) Series() map[string][]float64 {
	out := make(map[string][]float64)
	for _, l := range s.Lines() {
		out[l.Name] = l.Values
	}
	return out
}
