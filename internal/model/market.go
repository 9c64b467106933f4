package model

import "time"

// Bar represents a single daily OHLC record.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series holds the ordered daily bars of one symbol.
// Bars are expected ascending by date with no duplicates.
type Series struct {
	Symbol string
	Bars   []Bar
}

func (s Series) Len() int { return len(s.Bars) }

// Dates returns the date column.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Date
	}
	return out
}

// Closes returns the close column.
func (s Series) Closes() []float64 {
	return s.column(func(b Bar) float64 { return b.Close })
}

// Highs returns the high column.
func (s Series) Highs() []float64 {
	return s.column(func(b Bar) float64 { return b.High })
}

// Lows returns the low column.
func (s Series) Lows() []float64 {
	return s.column(func(b Bar) float64 { return b.Low })
}

// LastClose returns the close of the final bar. ok is false for an empty series.
func (s Series) LastClose() (float64, bool) {
	if len(s.Bars) == 0 {
		return 0, false
	}
	return s.Bars[len(s.Bars)-1].Close, true
}

func (s Series) column(get func(Bar) float64) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = get(b)
	}
	return out
}
