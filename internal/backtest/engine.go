// Package backtest simulates a mean-reversion pairs strategy over an
// aligned pair of price series. The position state machine is strictly
// sequential: it is path-dependent by construction and must iterate
// observations in time order exactly once.
package backtest

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"pairslab/internal/domain"
	"pairslab/internal/spread"
)

// MinRows is the minimum number of observations that must remain after
// alignment and rolling-window trimming.
const MinRows = 50

// tradingDaysPerYear annualizes the Sharpe ratio.
const tradingDaysPerYear = 252

// Errors returned by Run.
var (
	ErrInsufficientData = errors.New("insufficient data for backtest")
	ErrInvalidParams    = errors.New("invalid strategy parameters")
)

// Input is one backtest request over an aligned pair.
type Input struct {
	Dates  []time.Time
	PriceA []float64 // dependent leg
	PriceB []float64 // independent leg

	// HedgeRatio, when non-nil, is reused instead of re-estimated.
	// Grid search computes it once per pair and shares it across cells.
	HedgeRatio *float64

	LookbackWindow int // rolling z-score window
	Params         domain.StrategyParams
}

// Run executes the backtest and returns the full result. Deterministic:
// identical inputs yield identical output.
func Run(in Input) (*domain.BacktestResult, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	beta := 0.0
	if in.HedgeRatio != nil {
		beta = *in.HedgeRatio
	} else {
		if stat.Variance(in.PriceB, nil) == 0 {
			return nil, ErrInsufficientData
		}
		// Static hedge ratio over the full history keeps the spread
		// stable; only the z-score normalization rolls.
		_, beta = stat.LinearRegression(in.PriceB, in.PriceA, nil, false)
	}

	points, err := spread.Rolling(in.Dates, in.PriceA, in.PriceB, beta, in.LookbackWindow)
	if err != nil {
		return nil, ErrInsufficientData
	}
	if len(points) < MinRows {
		return nil, ErrInsufficientData
	}

	// Trim the price legs to the rows that survived the rolling window.
	offset := len(in.Dates) - len(points)
	dates := in.Dates[offset:]
	priceA := in.PriceA[offset:]
	priceB := in.PriceB[offset:]
	spr := spread.Series(priceA, priceB, beta)

	zs := make([]float64, len(points))
	for i, p := range points {
		zs[i] = p.ZScore
	}

	positions := simulate(zs, in.Params)
	returns := dailyReturns(positions, spr, priceA, priceB, beta)

	n := len(returns)
	equity := make([]float64, n)
	benchmark := make([]float64, n)
	drawdown := make([]float64, n)

	eq, bench, peak := 1.0, 1.0, math.Inf(-1)
	for t := 0; t < n; t++ {
		eq *= 1 + returns[t]
		equity[t] = eq

		benchRet := 0.0
		if t > 0 && priceA[t-1] != 0 {
			benchRet = priceA[t]/priceA[t-1] - 1
		}
		bench *= 1 + benchRet
		benchmark[t] = bench

		if eq > peak {
			peak = eq
		}
		drawdown[t] = (eq - peak) / peak
	}

	resultDates := make([]time.Time, n)
	copy(resultDates, dates)

	return &domain.BacktestResult{
		Dates:          resultDates,
		EquityCurve:    equity,
		BenchmarkCurve: benchmark,
		Drawdown:       drawdown,
		Positions:      positions,
		Metrics:        computeMetrics(returns, equity, drawdown, beta),
	}, nil
}

func validate(in Input) error {
	p := in.Params
	if p.EntryZ <= 0 || p.ExitZ < 0 || p.StopLossZ <= p.EntryZ {
		return ErrInvalidParams
	}
	if in.LookbackWindow < 2 {
		return ErrInvalidParams
	}
	if len(in.PriceA) != len(in.Dates) || len(in.PriceB) != len(in.Dates) {
		return ErrInvalidParams
	}
	if len(in.Dates) < MinRows {
		return ErrInsufficientData
	}
	return nil
}

// simulate runs the position state machine over the z-score series.
// At most one transition per step, decided from the current state and
// the current score only. positions[t] is the state held AFTER
// observing z(t).
func simulate(zs []float64, p domain.StrategyParams) []domain.Position {
	positions := make([]domain.Position, len(zs))
	state := domain.Flat

	for t, z := range zs {
		switch state {
		case domain.Flat:
			if z < -p.EntryZ {
				state = domain.LongSpread
			} else if z > p.EntryZ {
				state = domain.ShortSpread
			}
		case domain.LongSpread:
			// Mean reverted, or fell through the stop.
			if z > -p.ExitZ || z < -p.StopLossZ {
				state = domain.Flat
			}
		case domain.ShortSpread:
			if z < p.ExitZ || z > p.StopLossZ {
				state = domain.Flat
			}
		}
		positions[t] = state
	}
	return positions
}

// dailyReturns applies the one-day lag rule: the return realized on day
// t uses the position decided on day t-1, applied to the day-over-day
// spread change and normalized by the capital basis A + β·B. Day 0 has
// no prior position and returns 0.
func dailyReturns(positions []domain.Position, spr, priceA, priceB []float64, beta float64) []float64 {
	returns := make([]float64, len(spr))
	for t := 1; t < len(spr); t++ {
		capital := priceA[t] + beta*priceB[t]
		if capital == 0 {
			continue
		}
		returns[t] = float64(positions[t-1]) * (spr[t] - spr[t-1]) / capital
	}
	return returns
}

func computeMetrics(returns, equity, drawdown []float64, beta float64) domain.BacktestMetrics {
	mean := stat.Mean(returns, nil)
	std := math.Sqrt(stat.Variance(returns, nil))

	sharpe := 0.0
	if std > 0 {
		sharpe = mean / std * math.Sqrt(tradingDaysPerYear)
	}

	wins, active := 0, 0
	for _, r := range returns {
		if r != 0 {
			active++
			if r > 0 {
				wins++
			}
		}
	}
	winRate := 0.0
	if active > 0 {
		winRate = float64(wins) / float64(active)
	}

	maxDD := 0.0
	for _, d := range drawdown {
		if d < maxDD {
			maxDD = d
		}
	}

	return domain.BacktestMetrics{
		TotalReturn: equity[len(equity)-1] - 1,
		SharpeRatio: sharpe,
		MaxDrawdown: maxDD,
		WinRate:     winRate,
		HedgeRatio:  beta,
		TradeCount:  active,
	}
}
