// Package statarb is the façade the API layer consumes: universe
// scanning, spread series, backtests and sensitivity grids over price
// history served by a storage.DailyPriceStore.
package statarb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pairslab/internal/align"
	"pairslab/internal/backtest"
	"pairslab/internal/domain"
	"pairslab/internal/observability"
	"pairslab/internal/scanner"
	"pairslab/internal/sensitivity"
	"pairslab/internal/spread"
	"pairslab/internal/storage"
)

// ErrInvalidRequest flags caller mistakes (bad thresholds, unknown
// symbols, malformed ranges) so an API layer can map them separately
// from internal failures.
var ErrInvalidRequest = errors.New("invalid request")

// defaultHistory is the price window loaded when a request leaves the
// range unset: five years of daily closes.
const defaultHistory = 5 * 365 * 24 * time.Hour

// Options configures a Service.
type Options struct {
	PriceStore     storage.DailyPriceStore // required
	CandidateStore storage.CandidateStore  // optional persistence sink
	ScanOptions    scanner.Options
	Metrics        *observability.Metrics // optional
	Logger         zerolog.Logger
}

// Service exposes the computation core over the storage boundary.
type Service struct {
	prices     storage.DailyPriceStore
	candidates storage.CandidateStore
	scanner    *scanner.Scanner
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// New creates a Service.
func New(opts Options) *Service {
	return &Service{
		prices:     opts.PriceStore,
		candidates: opts.CandidateStore,
		scanner:    scanner.New(opts.ScanOptions, opts.Logger),
		metrics:    opts.Metrics,
		logger:     opts.Logger.With().Str("component", "statarb").Logger(),
	}
}

// BacktestRequest is one backtest invocation for a pair.
type BacktestRequest struct {
	Ticker1        string
	Ticker2        string
	EntryZ         float64
	ExitZ          float64
	StopLossZ      float64
	LookbackWindow int
	Start, End     time.Time // zero values default to the trailing 5 years
}

// GridRequest is one sensitivity sweep for a pair.
type GridRequest struct {
	Ticker1        string
	Ticker2        string
	EntryRange     domain.GridRange
	ExitRange      domain.GridRange
	StopLossZ      float64
	LookbackWindow int
	Start, End     time.Time
}

// ScanUniverse screens every pair in the universe for cointegration and,
// when a candidate store is configured, atomically replaces the stored
// candidate set with the scan's output. The context deadline bounds the
// scan; a truncated scan is returned (and persisted) as-is.
func (s *Service) ScanUniverse(ctx context.Context, tickers []string) ([]domain.PairCandidate, error) {
	if len(tickers) < 2 {
		return nil, fmt.Errorf("%w: universe needs at least 2 tickers", ErrInvalidRequest)
	}

	started := time.Now()
	matrix, err := s.loadAligned(ctx, tickers, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	res, err := s.scanner.Scan(ctx, matrix)
	if err != nil {
		return nil, fmt.Errorf("scan universe: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ScansTotal.Inc()
		s.metrics.PairsTested.Add(float64(res.PairsTested))
		s.metrics.PairsSkipped.Add(float64(res.PairsSkipped))
		s.metrics.PairsAccepted.Add(float64(len(res.Candidates)))
		s.metrics.ScanDuration.Observe(time.Since(started).Seconds())
		s.metrics.ActiveCandidates.Set(float64(len(res.Candidates)))
		if res.Truncated {
			s.metrics.ScansTruncated.Inc()
		}
	}

	if s.candidates != nil {
		if err := s.candidates.ReplaceAll(ctx, res.Candidates); err != nil {
			if s.metrics != nil {
				s.metrics.StoreErrors.WithLabelValues("candidates").Inc()
			}
			return nil, fmt.Errorf("persist scan results: %w", err)
		}
	}

	s.logger.Info().
		Int("universe", len(tickers)).
		Int("candidates", len(res.Candidates)).
		Bool("truncated", res.Truncated).
		Dur("elapsed", time.Since(started)).
		Msg("universe scan finished")

	return res.Candidates, nil
}

// ActiveCandidates returns the persisted candidates of the most recent
// scan, ordered by p-value.
func (s *Service) ActiveCandidates(ctx context.Context) ([]domain.PairCandidate, error) {
	if s.candidates == nil {
		return nil, fmt.Errorf("%w: no candidate store configured", ErrInvalidRequest)
	}
	return s.candidates.GetActive(ctx)
}

// SpreadSeries computes the rolling z-score series for a pair under a
// full-history hedge ratio.
func (s *Service) SpreadSeries(ctx context.Context, ticker1, ticker2 string, lookbackWindow int) ([]domain.SpreadPoint, error) {
	if lookbackWindow < 2 {
		return nil, fmt.Errorf("%w: lookback window must be at least 2", ErrInvalidRequest)
	}

	matrix, err := s.loadAligned(ctx, []string{ticker1, ticker2}, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	dates, a, b, err := matrix.Pair(ticker1, ticker2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	stats, err := spread.Metrics(a, b)
	if err != nil {
		return nil, fmt.Errorf("spread metrics for %s/%s: %w", ticker1, ticker2, err)
	}

	points, err := spread.Rolling(dates, a, b, stats.HedgeRatio, lookbackWindow)
	if err != nil {
		return nil, fmt.Errorf("rolling z-score for %s/%s: %w", ticker1, ticker2, err)
	}
	return points, nil
}

// RunBacktest simulates the pairs strategy for one pair and parameter
// set. Returns backtest.ErrInsufficientData when fewer than the
// required rows survive alignment and window trimming.
func (s *Service) RunBacktest(ctx context.Context, req BacktestRequest) (*domain.BacktestResult, error) {
	params := domain.StrategyParams{EntryZ: req.EntryZ, ExitZ: req.ExitZ, StopLossZ: req.StopLossZ}
	if params.EntryZ <= 0 || params.ExitZ < 0 || params.StopLossZ <= params.EntryZ || req.LookbackWindow < 2 {
		return nil, fmt.Errorf("%w: thresholds must satisfy entry>0, exit>=0, stop>entry, window>=2", ErrInvalidRequest)
	}

	started := time.Now()
	matrix, err := s.loadAligned(ctx, []string{req.Ticker1, req.Ticker2}, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	dates, a, b, err := matrix.Pair(req.Ticker1, req.Ticker2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	result, err := backtest.Run(backtest.Input{
		Dates:          dates,
		PriceA:         a,
		PriceB:         b,
		LookbackWindow: req.LookbackWindow,
		Params:         params,
	})

	if s.metrics != nil {
		outcome := "ok"
		switch {
		case errors.Is(err, backtest.ErrInsufficientData):
			outcome = "insufficient_data"
		case err != nil:
			outcome = "error"
		}
		s.metrics.BacktestsTotal.WithLabelValues(outcome).Inc()
		s.metrics.BacktestDuration.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("backtest %s/%s: %w", req.Ticker1, req.Ticker2, err)
	}
	return result, nil
}

// RunSensitivityGrid sweeps the backtest across entry/exit threshold
// combinations. Cells with exit_z >= entry_z are skipped, not errors.
func (s *Service) RunSensitivityGrid(ctx context.Context, req GridRequest) ([]domain.SensitivityPoint, error) {
	if req.StopLossZ <= 0 || req.LookbackWindow < 2 {
		return nil, fmt.Errorf("%w: stop loss and lookback window are required", ErrInvalidRequest)
	}
	if req.EntryRange.Step <= 0 || req.ExitRange.Step <= 0 {
		return nil, fmt.Errorf("%w: grid ranges need a positive step", ErrInvalidRequest)
	}

	matrix, err := s.loadAligned(ctx, []string{req.Ticker1, req.Ticker2}, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	dates, a, b, err := matrix.Pair(req.Ticker1, req.Ticker2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	points, err := sensitivity.Run(ctx, sensitivity.Request{
		Dates:      dates,
		PriceA:     a,
		PriceB:     b,
		EntryRange: req.EntryRange,
		ExitRange:  req.ExitRange,
		StopLossZ:  req.StopLossZ,
		Lookback:   req.LookbackWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("sensitivity grid %s/%s: %w", req.Ticker1, req.Ticker2, err)
	}

	if s.metrics != nil {
		s.metrics.GridCellsEvaluated.Add(float64(len(points)))
	}
	return points, nil
}

// loadAligned fetches the requested symbols from the price store and
// inner-joins them onto one calendar. Symbols with no stored history
// are a caller error; everything else propagates as-is.
func (s *Service) loadAligned(ctx context.Context, tickers []string, start, end time.Time) (*align.Matrix, error) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.Add(-defaultHistory)
	}

	series := make([]domain.PriceSeries, 0, len(tickers))
	rows := 0
	for _, ticker := range tickers {
		ps, err := s.prices.GetSeries(ctx, ticker, start, end)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: no price history for %s", ErrInvalidRequest, ticker)
			}
			if s.metrics != nil {
				s.metrics.StoreErrors.WithLabelValues("prices").Inc()
			}
			return nil, fmt.Errorf("load prices for %s: %w", ticker, err)
		}
		rows += ps.Len()
		series = append(series, ps)
	}
	if s.metrics != nil {
		s.metrics.PriceRowsLoaded.Add(float64(rows))
	}

	matrix, err := align.Build(series)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return matrix, nil
}
