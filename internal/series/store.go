// Package series holds the per-symbol OHLC tables loaded for a run.
package series

import (
	"errors"
	"fmt"
	"sync"

	"StockRanker/internal/model"
)

var (
	ErrEmpty     = errors.New("series is empty")
	ErrUnordered = errors.New("dates are not strictly increasing")
)

// Store keeps one immutable series per symbol and remembers insertion order.
type Store struct {
	mu     sync.RWMutex
	series map[string]model.Series
	order  []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{series: make(map[string]model.Series)}
}

// Put validates and stores a series. Dates must already be strictly
// increasing; the store never re-sorts. Putting a symbol twice replaces its
// series but keeps its original position.
func (s *Store) Put(ser model.Series) error {
	if len(ser.Bars) == 0 {
		return fmt.Errorf("%s: %w", ser.Symbol, ErrEmpty)
	}
	for i := 1; i < len(ser.Bars); i++ {
		if !ser.Bars[i].Date.After(ser.Bars[i-1].Date) {
			return fmt.Errorf("%s: row %d (%s): %w", ser.Symbol, i,
				ser.Bars[i].Date.Format("2006-01-02"), ErrUnordered)
		}
	}

	bars := make([]model.Bar, len(ser.Bars))
	copy(bars, ser.Bars)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.series[ser.Symbol]; !ok {
		s.order = append(s.order, ser.Symbol)
	}
	s.series[ser.Symbol] = model.Series{Symbol: ser.Symbol, Bars: bars}
	return nil
}

// Get returns the series stored for symbol.
func (s *Store) Get(symbol string) (model.Series, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ser, ok := s.series[symbol]
	return ser, ok
}

// Symbols returns the stored symbols in insertion order.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
