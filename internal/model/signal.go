package model

// Contribution is the outcome of scoring one indicator: either a finite
// Value, or Err describing why the indicator contributes nothing.
type Contribution struct {
	Indicator Indicator
	Value     float64
	Err       error
}

// OK reports whether the contribution succeeded.
func (c Contribution) OK() bool { return c.Err == nil }

// SymbolScore is the composite score of one symbol.
type SymbolScore struct {
	Symbol        string
	Index         int // position in the input universe, used for tie-breaks
	Total         float64
	Contributions []Contribution
	Indicators    *IndicatorSet
}

// Failed returns the indicators whose contribution failed.
func (s SymbolScore) Failed() []Indicator {
	var out []Indicator
	for _, c := range s.Contributions {
		if !c.OK() {
			out = append(out, c.Indicator)
		}
	}
	return out
}

// HasSignal reports whether at least one indicator contributed. A total of
// zero without signal means every indicator failed.
func (s SymbolScore) HasSignal() bool {
	for _, c := range s.Contributions {
		if c.OK() {
			return true
		}
	}
	return false
}

// Contribution returns the result for the given indicator.
func (s SymbolScore) Contribution(ind Indicator) (Contribution, bool) {
	for _, c := range s.Contributions {
		if c.Indicator == ind {
			return c, true
		}
	}
	return Contribution{}, false
}

// RankEntry is one row of a ranking.
type RankEntry struct {
	Rank      int
	Symbol    string
	Score     float64
	Failed    []Indicator
	HasSignal bool
}
