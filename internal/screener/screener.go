// Package screener runs one full pass over the universe: collect series,
// score every available symbol and expose the ranking and indicator series.
package screener

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"StockRanker/internal/collector"
	"StockRanker/internal/model"
	"StockRanker/internal/strategy"
)

// Screener wires a collector to the scoring engine.
type Screener struct {
	collector *collector.Collector
	engine    *strategy.Engine
	workers   int
}

// New creates a Screener scoring with up to workers goroutines.
func New(col *collector.Collector, engine *strategy.Engine, workers int) *Screener {
	if workers <= 0 {
		workers = 4
	}
	return &Screener{collector: col, engine: engine, workers: workers}
}

// Run collects and scores symbols. Symbols without data are listed in
// Result.Unavailable and excluded from the ranking; indicator failures only
// degrade the affected symbol's score.
func (s *Screener) Run(ctx context.Context, symbols []string) *Result {
	start := time.Now()
	store, missing := s.collector.Collect(ctx, symbols)

	index := make(map[string]int, len(symbols))
	for i, sym := range symbols {
		if _, seen := index[sym]; !seen {
			index[sym] = i
		}
	}

	loaded := store.Symbols()
	scores := make([]model.SymbolScore, len(loaded))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i, sym := range loaded {
		ser, _ := store.Get(sym)
		wg.Add(1)
		go func(i int, ser model.Series) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			score := s.engine.Evaluate(ser)
			score.Index = index[ser.Symbol]
			scores[i] = score
		}(i, ser)
	}
	wg.Wait()

	res := &Result{
		StartedAt:   start,
		Duration:    time.Since(start),
		Mode:        s.engine.Params().Mode,
		Scores:      scores,
		Unavailable: missing,
	}
	log.Info().Int("symbols", len(symbols)).Int("scored", len(scores)).
		Int("unavailable", len(missing)).Dur("took", res.Duration).Msg("screening run completed")
	return res
}

// Result is the outcome of one run. It is immutable once returned.
type Result struct {
	StartedAt   time.Time
	Duration    time.Duration
	Mode        strategy.Mode
	Scores      []model.SymbolScore // input order
	Unavailable []collector.Unavailable
}

// Rank returns at most topN symbols ordered by score descending.
func (r *Result) Rank(topN int) []model.RankEntry {
	return strategy.Rank(r.Scores, topN)
}

// Score returns the score of a symbol that was scored in this run.
func (r *Result) Score(symbol string) (model.SymbolScore, bool) {
	for _, s := range r.Scores {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return model.SymbolScore{}, false
}

// IndicatorSeries returns the indicator name to series mapping of a scored symbol.
func (r *Result) IndicatorSeries(symbol string) (map[string][]float64, bool) {
	s, ok := r.Score(symbol)
	if !ok {
		return nil, false
	}
	return s.Indicators.Series(), true
}
