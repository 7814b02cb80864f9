// Package storage defines the narrow persistence boundary the
// computation core consumes. The core never owns these collaborators;
// it reads aligned price history and, optionally, replaces the derived
// candidate set after a scan.
package storage

import (
	"context"
	"time"

	"pairslab/internal/domain"
)

// DailyPriceStore provides access to per-symbol daily close history.
type DailyPriceStore interface {
	// InsertBulk adds daily price rows in one batch.
	InsertBulk(ctx context.Context, prices []domain.DailyPrice) error

	// GetSeries retrieves the close series for a symbol within
	// [start, end] inclusive, ordered by date ascending. Returns
	// ErrNotFound when the symbol has no rows in range.
	GetSeries(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error)

	// Symbols lists all symbols with stored history, sorted ascending.
	Symbols(ctx context.Context) ([]string, error)
}

// CandidateStore persists the derived cointegrated-pair set.
type CandidateStore interface {
	// ReplaceAll atomically swaps the stored candidate set for the
	// supplied one. Readers never observe the intermediate state, and a
	// failure leaves the previous set intact.
	ReplaceAll(ctx context.Context, candidates []domain.PairCandidate) error

	// GetActive returns the active candidates of the most recent scan,
	// ordered by p-value ascending.
	GetActive(ctx context.Context) ([]domain.PairCandidate, error)
}
