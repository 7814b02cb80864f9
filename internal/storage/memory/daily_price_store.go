package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pairslab/internal/domain"
	"pairslab/internal/storage"
)

// DailyPriceStore is an in-memory implementation of
// storage.DailyPriceStore, used by tests and the -use-memory mode.
type DailyPriceStore struct {
	mu   sync.RWMutex
	data map[string][]domain.DailyPrice // keyed by symbol, sorted by date
}

// NewDailyPriceStore creates a new in-memory price store.
func NewDailyPriceStore() *DailyPriceStore {
	return &DailyPriceStore{data: make(map[string][]domain.DailyPrice)}
}

// Compile-time interface check.
var _ storage.DailyPriceStore = (*DailyPriceStore)(nil)

// InsertBulk adds daily price rows in one batch.
func (s *DailyPriceStore) InsertBulk(_ context.Context, prices []domain.DailyPrice) error {
	for _, p := range prices {
		if p.Symbol == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	touched := make(map[string]struct{})
	for _, p := range prices {
		s.data[p.Symbol] = append(s.data[p.Symbol], p)
		touched[p.Symbol] = struct{}{}
	}
	for sym := range touched {
		rows := s.data[sym]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	}
	return nil
}

// GetSeries retrieves the close series for a symbol within [start, end].
func (s *DailyPriceStore) GetSeries(_ context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := domain.PriceSeries{Symbol: symbol}
	for _, p := range s.data[symbol] {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		series.Dates = append(series.Dates, p.Date)
		series.Closes = append(series.Closes, p.Close)
	}
	if series.Len() == 0 {
		return domain.PriceSeries{}, storage.ErrNotFound
	}
	return series, nil
}

// Symbols lists all stored symbols, sorted ascending.
func (s *DailyPriceStore) Symbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.data))
	for sym := range s.data {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols, nil
}
