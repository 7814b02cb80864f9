// Package scanner runs the pairwise cointegration screen across an
// aligned price matrix. Each pair test depends only on read-only shared
// input, so pairs are distributed across a bounded worker pool; the
// result slice is the only guarded state.
package scanner

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"pairslab/internal/align"
	"pairslab/internal/coint"
	"pairslab/internal/domain"
	"pairslab/internal/spread"
)

// DefaultSignificance is the accept threshold on the test p-value.
const DefaultSignificance = 0.05

// Options tune a scan. The zero value is usable.
type Options struct {
	// Significance is the p-value accept threshold (default 0.05).
	Significance float64
	// MinObservations is the per-pair overlap floor (default 30).
	MinObservations int
	// MaxWorkers bounds the worker pool (default GOMAXPROCS).
	MaxWorkers int
}

func (o Options) withDefaults() Options {
	if o.Significance <= 0 {
		o.Significance = DefaultSignificance
	}
	if o.MinObservations <= 0 {
		o.MinObservations = align.MinObservations
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Result is the outcome of one universe scan.
type Result struct {
	Candidates []domain.PairCandidate
	// PairsTested counts pairs that ran the cointegration test.
	PairsTested int
	// PairsSkipped counts pairs dropped for short overlap or numerical
	// failure; such failures never abort the scan.
	PairsSkipped int
	// Truncated marks a scan cut short by the caller's deadline; the
	// candidates gathered so far are still returned.
	Truncated bool
}

// Scanner screens a universe for cointegrated pairs.
type Scanner struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a Scanner.
func New(opts Options, logger zerolog.Logger) *Scanner {
	return &Scanner{opts: opts.withDefaults(), logger: logger.With().Str("component", "scanner").Logger()}
}

// pairJob is one unordered (i, j) combination, i < j in the matrix's
// sorted symbol order, which fixes a deterministic enumeration.
type pairJob struct {
	t1, t2 string
}

// Scan tests every unordered pair in the matrix universe and returns
// the accepted candidates. The context deadline bounds total work: once
// expired, remaining pairs are not dispatched and the partial result is
// returned with Truncated set.
func (s *Scanner) Scan(ctx context.Context, m *align.Matrix) (*Result, error) {
	symbols := m.Symbols
	jobs := make([]pairJob, 0, len(symbols)*(len(symbols)-1)/2)
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			jobs = append(jobs, pairJob{symbols[i], symbols[j]})
		}
	}

	res := &Result{}
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.opts.MaxWorkers)
	)

	for _, job := range jobs {
		if ctx.Err() != nil {
			res.Truncated = true
			break
		}

		wg.Add(1)
		go func(job pairJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cand, tested := s.scanPair(m, job)

			mu.Lock()
			defer mu.Unlock()
			if !tested {
				res.PairsSkipped++
				return
			}
			res.PairsTested++
			if cand != nil {
				res.Candidates = append(res.Candidates, *cand)
			}
		}(job)
	}
	wg.Wait()

	// Workers append in completion order; rank candidates by evidence
	// strength with the pair name as a stable tiebreak.
	sort.Slice(res.Candidates, func(i, j int) bool {
		ci, cj := res.Candidates[i], res.Candidates[j]
		if ci.PValue != cj.PValue {
			return ci.PValue < cj.PValue
		}
		if ci.Ticker1 != cj.Ticker1 {
			return ci.Ticker1 < cj.Ticker1
		}
		return ci.Ticker2 < cj.Ticker2
	})

	s.logger.Info().
		Int("universe", len(symbols)).
		Int("tested", res.PairsTested).
		Int("skipped", res.PairsSkipped).
		Int("accepted", len(res.Candidates)).
		Bool("truncated", res.Truncated).
		Msg("scan complete")

	return res, nil
}

// scanPair tests one pair. tested=false flags a skip (short overlap or
// numerical failure).
func (s *Scanner) scanPair(m *align.Matrix, job pairJob) (cand *domain.PairCandidate, tested bool) {
	_, a, b, err := m.Pair(job.t1, job.t2)
	if err != nil {
		s.logger.Warn().Err(err).Str("pair", job.t1+"/"+job.t2).Msg("pair unavailable")
		return nil, false
	}
	if len(a) < s.opts.MinObservations {
		return nil, false
	}

	eg, err := coint.EngleGranger(a, b)
	if err != nil {
		// Degenerate regressions are isolated to the pair.
		s.logger.Warn().Err(err).Str("pair", job.t1+"/"+job.t2).Msg("cointegration test failed")
		return nil, false
	}

	if eg.PValue >= s.opts.Significance {
		// Not cointegrated: an exclusion, not an error.
		return nil, true
	}

	stats, err := spread.Metrics(a, b)
	if err != nil {
		s.logger.Warn().Err(err).Str("pair", job.t1+"/"+job.t2).Msg("spread metrics failed")
		return nil, false
	}

	return &domain.PairCandidate{
		Ticker1:    job.t1,
		Ticker2:    job.t2,
		PValue:     eg.PValue,
		HedgeRatio: stats.HedgeRatio,
		HalfLife:   stats.HalfLife,
		LastZScore: stats.LastZScore,
		IsActive:   true,
	}, true
}
