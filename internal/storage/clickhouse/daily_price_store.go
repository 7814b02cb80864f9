package clickhouse

import (
	"context"
	"fmt"
	"time"

	"pairslab/internal/domain"
	"pairslab/internal/storage"
)

// DailyPriceStore implements storage.DailyPriceStore using ClickHouse.
type DailyPriceStore struct {
	conn *Conn
}

// NewDailyPriceStore creates a new DailyPriceStore.
func NewDailyPriceStore(conn *Conn) *DailyPriceStore {
	return &DailyPriceStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailyPriceStore = (*DailyPriceStore)(nil)

// InsertBulk adds daily price rows in one batch.
func (s *DailyPriceStore) InsertBulk(ctx context.Context, prices []domain.DailyPrice) error {
	if len(prices) == 0 {
		return nil
	}
	for _, p := range prices {
		if p.Symbol == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_prices (symbol, trade_date, close)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range prices {
		if err := batch.Append(p.Symbol, p.Date, p.Close); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetSeries retrieves the close series for a symbol within [start, end]
// (inclusive), ordered by date ascending.
func (s *DailyPriceStore) GetSeries(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	query := `
		SELECT trade_date, close
		FROM daily_prices
		WHERE symbol = ? AND trade_date >= ? AND trade_date <= ?
		ORDER BY trade_date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, start, end)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("query daily prices: %w", err)
	}
	defer rows.Close()

	series := domain.PriceSeries{Symbol: symbol}
	for rows.Next() {
		var (
			date time.Time
			px   float64
		)
		if err := rows.Scan(&date, &px); err != nil {
			return domain.PriceSeries{}, fmt.Errorf("scan daily price row: %w", err)
		}
		series.Dates = append(series.Dates, date)
		series.Closes = append(series.Closes, px)
	}
	if err := rows.Err(); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("iterate daily price rows: %w", err)
	}

	if series.Len() == 0 {
		return domain.PriceSeries{}, storage.ErrNotFound
	}
	return series, nil
}

// Symbols lists all symbols with stored history, sorted ascending.
func (s *DailyPriceStore) Symbols(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT symbol FROM daily_prices ORDER BY symbol ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol row: %w", err)
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbol rows: %w", err)
	}
	return symbols, nil
}
