package domain

// GridRange enumerates a threshold axis from Min to Max stepping by
// Step, inclusive of Max within floating tolerance.
type GridRange struct {
	Min  float64
	Max  float64
	Step float64
}

// SensitivityPoint is the metrics row for one valid grid cell.
// Cells with ExitZ >= EntryZ are never materialized.
type SensitivityPoint struct {
	EntryZ      float64
	ExitZ       float64
	SharpeRatio float64
	TotalReturn float64
	WinRate     float64
	Trades      int
}
