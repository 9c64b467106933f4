package collector

import (
	"context"

	"StockRanker/internal/model"
)

// Fetcher defines the interface for fetching daily OHLC bars.
// Returned bars must be ascending by date with no duplicate dates.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string) ([]model.Bar, error)
	Name() string
}
