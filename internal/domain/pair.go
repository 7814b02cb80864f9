package domain

// HalfLifeSentinel marks a spread whose AR(1) fit shows no mean
// reversion (φ ≥ 0). Candidates carrying it are never tradeable but
// are kept for diagnostics.
const HalfLifeSentinel = 9999.0

// PairCandidate is a cointegrated pair accepted by a universe scan.
// A scan replaces the full prior candidate set; rows exist only as the
// output of the most recent scan.
type PairCandidate struct {
	Ticker1    string  // dependent leg (Y in the hedge regression)
	Ticker2    string  // independent leg (X)
	PValue     float64 // Engle-Granger p-value, always < significance level
	HedgeRatio float64 // OLS slope of Ticker1 on Ticker2
	HalfLife   float64 // mean-reversion half-life in days, or HalfLifeSentinel
	LastZScore float64 // full-sample z-score of the most recent spread value
	IsActive   bool    // currently monitored
}
