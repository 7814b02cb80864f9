package reporting

import (
	"time"

	"pairslab/internal/domain"
)

// Report is the scan report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Scan Summary
	ScanSummary ScanSummary

	// Candidates (sorted by p-value ascending)
	Candidates []domain.PairCandidate

	// Sensitivity grid for one highlighted pair, optional.
	GridPair string
	Grid     []domain.SensitivityPoint
}

// ScanSummary describes the universe the candidates came from.
type ScanSummary struct {
	UniverseSize int
	PairsTested  int
	PairsSkipped int
	Significance float64
	Truncated    bool
}
