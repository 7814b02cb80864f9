package reporting

import (
	"context"
	"sort"
	"time"

	"pairslab/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	candidateStore storage.CandidateStore
	now            func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(candidateStore storage.CandidateStore) *Generator {
	return &Generator{
		candidateStore: candidateStore,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report from the persisted candidate set. The
// summary describes the scan the candidates came from.
func (g *Generator) Generate(ctx context.Context, summary ScanSummary) (*Report, error) {
	candidates, err := g.candidateStore.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	// Stores already order by p-value; keep the guarantee regardless of
	// the backing implementation.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PValue < candidates[j].PValue
	})

	return &Report{
		GeneratedAt: g.now(),
		ScanSummary: summary,
		Candidates:  candidates,
	}, nil
}
