package memory

import (
	"context"
	"sort"
	"sync"

	"pairslab/internal/domain"
	"pairslab/internal/storage"
)

// CandidateStore is an in-memory implementation of
// storage.CandidateStore. ReplaceAll swaps the whole slice under one
// lock, so readers never observe a half-replaced set.
type CandidateStore struct {
	mu         sync.RWMutex
	candidates []domain.PairCandidate
}

// NewCandidateStore creates a new in-memory candidate store.
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{}
}

// Compile-time interface check.
var _ storage.CandidateStore = (*CandidateStore)(nil)

// ReplaceAll atomically swaps the stored candidate set.
func (s *CandidateStore) ReplaceAll(_ context.Context, candidates []domain.PairCandidate) error {
	for _, c := range candidates {
		if c.Ticker1 == "" || c.Ticker2 == "" {
			return storage.ErrInvalidInput
		}
	}

	// Build the replacement before taking the lock.
	next := make([]domain.PairCandidate, len(candidates))
	copy(next, candidates)

	s.mu.Lock()
	s.candidates = next
	s.mu.Unlock()
	return nil
}

// GetActive returns active candidates ordered by p-value ascending.
func (s *CandidateStore) GetActive(_ context.Context) ([]domain.PairCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PairCandidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PValue < out[j].PValue })
	return out, nil
}
