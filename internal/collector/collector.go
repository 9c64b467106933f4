package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"StockRanker/internal/model"
	"StockRanker/internal/series"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Data  map[string][]model.Bar
	Errs  map[string]error
	Price float64
	Days  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string) ([]model.Bar, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Data[symbol]; ok {
		return bars, nil
	}
	if m.Price == 0 {
		return nil, fmt.Errorf("mock: no data for %s", symbol)
	}
	days := m.Days
	if days <= 0 {
		days = 120
	}
	return generateMockBars(symbol, m.Price, days), nil
}

// generateMockBars produces a deterministic, gently oscillating daily series
// so that different symbols get different scores.
func generateMockBars(symbol string, basePrice float64, count int) []model.Bar {
	seed := 0
	for _, r := range symbol {
		seed += int(r)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		drift := float64((i*7+seed)%23-11) * 0.002
		trend := float64(seed%5-2) * 0.0005 * float64(i)
		p := basePrice * (1 + drift + trend)
		bars[i] = model.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Unavailable records a symbol excluded because its series could not be loaded.
type Unavailable struct {
	Symbol string
	Index  int
	Err    error
}

// Collector fetches the universe into a series store.
type Collector struct {
	Fetcher     Fetcher
	Concurrency int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, concurrency int) *Collector {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Collector{Fetcher: fetcher, Concurrency: concurrency}
}

// Collect fetches every symbol concurrently. Symbols that cannot be fetched
// or whose series is malformed are returned as Unavailable, wrapping
// model.ErrDataUnavailable; they never abort the others. The store keeps the
// input order of the symbols that loaded.
func (c *Collector) Collect(ctx context.Context, symbols []string) (*series.Store, []Unavailable) {
	type fetched struct {
		bars []model.Bar
		err  error
	}
	results := make([]fetched, len(symbols))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.Concurrency)
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			bars, err := c.Fetcher.FetchDailyBars(ctx, symbol)
			results[i] = fetched{bars: bars, err: err}
		}(i, sym)
	}
	wg.Wait()

	store := series.NewStore()
	var missing []Unavailable
	for i, sym := range symbols {
		err := results[i].err
		if err == nil {
			err = store.Put(model.Series{Symbol: sym, Bars: results[i].bars})
		}
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", model.ErrDataUnavailable, sym, err)
			log.Warn().Str("symbol", sym).Str("source", c.Fetcher.Name()).Err(err).Msg("symbol excluded")
			missing = append(missing, Unavailable{Symbol: sym, Index: i, Err: err})
			continue
		}
		log.Debug().Str("symbol", sym).Int("bars", len(results[i].bars)).Msg("series loaded")
	}
	return store, missing
}
