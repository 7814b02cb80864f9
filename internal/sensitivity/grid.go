// Package sensitivity sweeps the backtest engine across a grid of
// entry/exit thresholds. Every cell is independent, so cells run on a
// bounded worker pool; the sequential engine stays the unit of work.
package sensitivity

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"pairslab/internal/backtest"
	"pairslab/internal/domain"
)

// stepTolerance absorbs floating-point drift when enumerating an axis
// so the range maximum stays included.
const stepTolerance = 1e-9

// Request is one grid sweep over a pair's aligned series.
type Request struct {
	Dates  []time.Time
	PriceA []float64
	PriceB []float64

	EntryRange domain.GridRange
	ExitRange  domain.GridRange
	StopLossZ  float64
	Lookback   int

	// MaxWorkers bounds the cell pool (default GOMAXPROCS).
	MaxWorkers int
}

// Run evaluates every valid grid cell and returns one point per cell.
// Cells with exit_z >= entry_z are silently skipped: mean-reversion
// exits must sit inside the entry band. A cell whose backtest fails is
// dropped without aborting the sweep. Output order is deterministic:
// ascending (entry_z, exit_z).
func Run(ctx context.Context, req Request) ([]domain.SensitivityPoint, error) {
	entries := enumerate(req.EntryRange)
	exits := enumerate(req.ExitRange)

	// The hedge ratio is a property of the pair, not of the thresholds:
	// compute it once and reuse it in every cell.
	if stat.Variance(req.PriceB, nil) == 0 {
		return nil, backtest.ErrInsufficientData
	}
	_, beta := stat.LinearRegression(req.PriceB, req.PriceA, nil, false)

	workers := req.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	type cell struct{ entry, exit float64 }
	var cells []cell
	for _, entry := range entries {
		for _, exit := range exits {
			if exit >= entry {
				continue
			}
			cells = append(cells, cell{entry, exit})
		}
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		sem    = make(chan struct{}, workers)
		points []domain.SensitivityPoint
	)

	for _, c := range cells {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(c cell) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := backtest.Run(backtest.Input{
				Dates:          req.Dates,
				PriceA:         req.PriceA,
				PriceB:         req.PriceB,
				HedgeRatio:     &beta,
				LookbackWindow: req.Lookback,
				Params: domain.StrategyParams{
					EntryZ:    c.entry,
					ExitZ:     c.exit,
					StopLossZ: req.StopLossZ,
				},
			})
			if err != nil {
				return
			}

			mu.Lock()
			points = append(points, domain.SensitivityPoint{
				EntryZ:      c.entry,
				ExitZ:       c.exit,
				SharpeRatio: result.Metrics.SharpeRatio,
				TotalReturn: result.Metrics.TotalReturn,
				WinRate:     result.Metrics.WinRate,
				Trades:      result.Metrics.TradeCount,
			})
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	sort.Slice(points, func(i, j int) bool {
		if points[i].EntryZ != points[j].EntryZ {
			return points[i].EntryZ < points[j].EntryZ
		}
		return points[i].ExitZ < points[j].ExitZ
	})
	return points, nil
}

// enumerate expands a range into its grid values, inclusive of Max
// within floating tolerance.
func enumerate(r domain.GridRange) []float64 {
	if r.Step <= 0 || r.Max < r.Min {
		return nil
	}
	var values []float64
	for i := 0; ; i++ {
		v := r.Min + float64(i)*r.Step
		if v > r.Max+stepTolerance {
			break
		}
		values = append(values, v)
	}
	return values
}
