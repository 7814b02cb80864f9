package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pairslab/internal/domain"
	"pairslab/internal/storage/memory"
)

func fixedClock() time.Time {
	return time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)
}

func TestGenerator_OrdersByPValue(t *testing.T) {
	store := memory.NewCandidateStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, []domain.PairCandidate{
		{Ticker1: "AAA", Ticker2: "BBB", PValue: 0.04, HedgeRatio: 1.5, HalfLife: 10, IsActive: true},
		{Ticker1: "CCC", Ticker2: "DDD", PValue: 0.01, HedgeRatio: 0.8, HalfLife: 5, IsActive: true},
	}))

	gen := NewGenerator(store).WithClock(fixedClock)
	report, err := gen.Generate(ctx, ScanSummary{UniverseSize: 4, PairsTested: 6, Significance: 0.05})
	require.NoError(t, err)

	require.Equal(t, fixedClock(), report.GeneratedAt)
	require.Len(t, report.Candidates, 2)
	require.Equal(t, "CCC", report.Candidates[0].Ticker1)
	require.Equal(t, "AAA", report.Candidates[1].Ticker1)
	require.Equal(t, 4, report.ScanSummary.UniverseSize)
}

func TestRenderCandidatesCSV(t *testing.T) {
	csv := RenderCandidatesCSV([]domain.PairCandidate{
		{Ticker1: "AAA", Ticker2: "BBB", PValue: 0.042, HedgeRatio: 1.5, HalfLife: 12.25, LastZScore: -1.5},
	})

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "ticker_1,ticker_2,p_value,hedge_ratio,half_life,last_z_score", lines[0])
	require.Equal(t, "AAA,BBB,0.042000,1.500000,12.2500,-1.5000", lines[1])
}

func TestRenderGridCSV(t *testing.T) {
	csv := RenderGridCSV([]domain.SensitivityPoint{
		{EntryZ: 2.0, ExitZ: 0.5, SharpeRatio: 1.25, TotalReturn: 0.1, WinRate: 0.6, Trades: 42},
	})

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "entry_z,exit_z,sharpe_ratio,total_return,win_rate,trades", lines[0])
	require.Equal(t, "2.0000,0.5000,1.250000,0.100000,0.600000,42", lines[1])
}

func TestRenderMarkdown_WithCandidates(t *testing.T) {
	r := &Report{
		GeneratedAt: fixedClock(),
		ScanSummary: ScanSummary{UniverseSize: 10, PairsTested: 45, PairsSkipped: 0, Significance: 0.05},
		Candidates: []domain.PairCandidate{
			{Ticker1: "AAA", Ticker2: "BBB", PValue: 0.0123, HedgeRatio: 1.5, HalfLife: 12.3, LastZScore: -2.1},
		},
	}

	md := RenderMarkdown(r)
	require.Contains(t, md, "# Pair Scan Report")
	require.Contains(t, md, "| Universe Size | 10 |")
	require.Contains(t, md, "| AAA/BBB | 0.0123 | 1.5000 | 12.3 | -2.10 |")
	require.NotContains(t, md, "Truncated")
}

func TestRenderMarkdown_EmptyAndTruncated(t *testing.T) {
	r := &Report{
		GeneratedAt: fixedClock(),
		ScanSummary: ScanSummary{UniverseSize: 2, PairsTested: 1, Significance: 0.05, Truncated: true},
	}

	md := RenderMarkdown(r)
	require.Contains(t, md, "No cointegrated pairs found")
	require.Contains(t, md, "| Truncated | yes |")
	require.NotContains(t, md, "Sensitivity Grid")
}

func TestRenderMarkdown_GridSection(t *testing.T) {
	r := &Report{
		GeneratedAt: fixedClock(),
		GridPair:    "AAA/BBB",
		Grid: []domain.SensitivityPoint{
			{EntryZ: 2.0, ExitZ: 0.5, SharpeRatio: 1.2, TotalReturn: 0.08, WinRate: 0.55, Trades: 31},
		},
	}

	md := RenderMarkdown(r)
	require.Contains(t, md, "## Sensitivity Grid: AAA/BBB")
	require.Contains(t, md, "| 2.00 | 0.50 | 1.2000 | 0.0800 | 0.5500 | 31 |")
}
