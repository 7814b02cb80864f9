package domain

import "time"

// Position is the state of the pairs state machine at one observation.
type Position int

// Position states. At most one holds at any time.
const (
	Flat        Position = 0
	LongSpread  Position = 1  // long Ticker1, short HedgeRatio units of Ticker2
	ShortSpread Position = -1 // short Ticker1, long HedgeRatio units of Ticker2
)

// StrategyParams are the z-score thresholds driving the state machine.
// Valid when EntryZ > 0, ExitZ >= 0 and StopLossZ > EntryZ.
type StrategyParams struct {
	EntryZ    float64
	ExitZ     float64
	StopLossZ float64
}

// BacktestMetrics summarizes one backtest run.
type BacktestMetrics struct {
	TotalReturn float64 // equity_curve[last] - 1
	SharpeRatio float64 // annualized by sqrt(252), 0 when return std is 0
	MaxDrawdown float64 // most negative drawdown value
	WinRate     float64 // positive-return days / nonzero-return days
	HedgeRatio  float64
	TradeCount  int // days with nonzero return (activity proxy)
}

// BacktestResult is the full output of one backtest invocation.
// Immutable once returned.
type BacktestResult struct {
	Dates          []time.Time
	EquityCurve    []float64 // cumulative return multipliers, starts at 1.0 conceptually
	BenchmarkCurve []float64 // buy-and-hold on the first leg
	Drawdown       []float64 // non-positive fractions off the running equity peak
	Positions      []Position
	Metrics        BacktestMetrics
}
