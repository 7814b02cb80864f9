package domain

import "time"

// SpreadPoint is one observation of the normalized spread for a pair.
type SpreadPoint struct {
	Date   time.Time
	ZScore float64
}

// SpreadStats holds the one-shot spread metrics for a pair under a
// fixed hedge ratio, computed over the full aligned history.
type SpreadStats struct {
	HedgeRatio float64
	HalfLife   float64 // days, or HalfLifeSentinel when not mean reverting
	LastZScore float64 // z of the most recent spread value, 0 when std is 0
	SpreadMean float64
	SpreadStd  float64 // population std, matching the full-sample z definition
}
