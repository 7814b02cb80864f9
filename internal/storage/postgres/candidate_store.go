package postgres

import (
	"context"
	"fmt"

	"pairslab/internal/domain"
	"pairslab/internal/storage"
)

// CandidateStore implements storage.CandidateStore using PostgreSQL.
type CandidateStore struct {
	pool *Pool
}

// NewCandidateStore creates a new CandidateStore.
func NewCandidateStore(pool *Pool) *CandidateStore {
	return &CandidateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CandidateStore = (*CandidateStore)(nil)

// ReplaceAll swaps the stored candidate set inside a single
// transaction: the delete and inserts commit together, so concurrent
// readers see either the old set or the new one, never the window in
// between, and a mid-scan failure leaves the previous set intact.
func (s *CandidateStore) ReplaceAll(ctx context.Context, candidates []domain.PairCandidate) error {
	for _, c := range candidates {
		if c.Ticker1 == "" || c.Ticker2 == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace candidates: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM pair_candidates`); err != nil {
		return fmt.Errorf("clear candidates: %w", err)
	}

	query := `
		INSERT INTO pair_candidates (
			ticker_1, ticker_2, p_value, hedge_ratio, half_life, last_z_score, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, c := range candidates {
		_, err := tx.Exec(ctx, query,
			c.Ticker1,
			c.Ticker2,
			c.PValue,
			c.HedgeRatio,
			c.HalfLife,
			c.LastZScore,
			c.IsActive,
		)
		if err != nil {
			return fmt.Errorf("insert candidate %s/%s: %w", c.Ticker1, c.Ticker2, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace candidates: %w", err)
	}
	return nil
}

// GetActive returns active candidates ordered by p-value ascending.
func (s *CandidateStore) GetActive(ctx context.Context) ([]domain.PairCandidate, error) {
	query := `
		SELECT ticker_1, ticker_2, p_value, hedge_ratio, half_life, last_z_score, is_active
		FROM pair_candidates
		WHERE is_active
		ORDER BY p_value ASC, ticker_1 ASC, ticker_2 ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.PairCandidate
	for rows.Next() {
		var c domain.PairCandidate
		err := rows.Scan(
			&c.Ticker1,
			&c.Ticker2,
			&c.PValue,
			&c.HedgeRatio,
			&c.HalfLife,
			&c.LastZScore,
			&c.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}
	return candidates, nil
}
