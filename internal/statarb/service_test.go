package statarb

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"pairslab/internal/backtest"
	"pairslab/internal/domain"
	"pairslab/internal/storage/memory"
)

// seedPrices loads a universe into a fresh memory store: LEGA/LEGB are
// cointegrated, RAND walks on its own. Dates end yesterday so the
// default trailing window covers them.
func seedPrices(t *testing.T, days int) *memory.DailyPriceStore {
	t.Helper()

	store := memory.NewDailyPriceStore()
	rng := rand.New(rand.NewSource(71))
	end := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -1)

	rows := make([]domain.DailyPrice, 0, 3*days)
	logB, resid, logW := 0.0, 0.0, 0.0
	for i := 0; i < days; i++ {
		date := end.AddDate(0, 0, i-days+1)
		logB += 0.008 * rng.NormFloat64()
		resid = 0.85*resid + 0.4*rng.NormFloat64()
		logW += 0.012 * rng.NormFloat64()

		legb := 50 * math.Exp(logB)
		rows = append(rows,
			domain.DailyPrice{Symbol: "LEGA", Date: date, Close: 2*legb + resid},
			domain.DailyPrice{Symbol: "LEGB", Date: date, Close: legb},
			domain.DailyPrice{Symbol: "RAND", Date: date, Close: 100 * math.Exp(logW)},
		)
	}
	require.NoError(t, store.InsertBulk(context.Background(), rows))
	return store
}

func newService(t *testing.T, days int) (*Service, *memory.CandidateStore) {
	t.Helper()
	candidates := memory.NewCandidateStore()
	svc := New(Options{
		PriceStore:     seedPrices(t, days),
		CandidateStore: candidates,
		Logger:         zerolog.Nop(),
	})
	return svc, candidates
}

func TestScanUniverse_PersistsCandidates(t *testing.T) {
	svc, candidateStore := newService(t, 300)

	found, err := svc.ScanUniverse(context.Background(), []string{"LEGA", "LEGB", "RAND"})
	require.NoError(t, err)
	require.NotEmpty(t, found)
	require.Equal(t, "LEGA", found[0].Ticker1)
	require.Equal(t, "LEGB", found[0].Ticker2)

	stored, err := candidateStore.GetActive(context.Background())
	require.NoError(t, err)
	require.Equal(t, found, stored)
}

func TestScanUniverse_ReplacesPreviousResults(t *testing.T) {
	svc, candidateStore := newService(t, 300)
	ctx := context.Background()

	stale := []domain.PairCandidate{{Ticker1: "OLD", Ticker2: "PAIR", PValue: 0.01, IsActive: true}}
	require.NoError(t, candidateStore.ReplaceAll(ctx, stale))

	_, err := svc.ScanUniverse(ctx, []string{"LEGA", "LEGB", "RAND"})
	require.NoError(t, err)

	stored, err := candidateStore.GetActive(ctx)
	require.NoError(t, err)
	for _, c := range stored {
		require.NotEqual(t, "OLD", c.Ticker1, "stale candidates must be gone after a scan")
	}
}

func TestScanUniverse_RequestValidation(t *testing.T) {
	svc, _ := newService(t, 300)
	ctx := context.Background()

	_, err := svc.ScanUniverse(ctx, []string{"LEGA"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.ScanUniverse(ctx, []string{"LEGA", "NOPE"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestActiveCandidates_NoStoreConfigured(t *testing.T) {
	svc := New(Options{PriceStore: seedPrices(t, 100), Logger: zerolog.Nop()})
	_, err := svc.ActiveCandidates(context.Background())
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSpreadSeries_WindowTrim(t *testing.T) {
	svc, _ := newService(t, 200)

	points, err := svc.SpreadSeries(context.Background(), "LEGA", "LEGB", 30)
	require.NoError(t, err)
	require.Len(t, points, 200-30+1)
	for i := 1; i < len(points); i++ {
		require.True(t, points[i].Date.After(points[i-1].Date))
	}
}

func TestSpreadSeries_BadWindow(t *testing.T) {
	svc, _ := newService(t, 200)
	_, err := svc.SpreadSeries(context.Background(), "LEGA", "LEGB", 1)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRunBacktest_HappyPath(t *testing.T) {
	svc, _ := newService(t, 300)

	result, err := svc.RunBacktest(context.Background(), BacktestRequest{
		Ticker1:        "LEGA",
		Ticker2:        "LEGB",
		EntryZ:         1.5,
		ExitZ:          0.3,
		StopLossZ:      4.0,
		LookbackWindow: 20,
	})
	require.NoError(t, err)
	require.Len(t, result.EquityCurve, 300-20+1)
	require.Equal(t, 1.0, result.EquityCurve[0])
	require.InDelta(t, 2.0, result.Metrics.HedgeRatio, 0.2)
}

func TestRunBacktest_Validation(t *testing.T) {
	svc, _ := newService(t, 300)
	ctx := context.Background()
	base := BacktestRequest{
		Ticker1: "LEGA", Ticker2: "LEGB",
		EntryZ: 2.0, ExitZ: 0.5, StopLossZ: 4.0, LookbackWindow: 30,
	}

	for name, mutate := range map[string]func(*BacktestRequest){
		"zero entry":       func(r *BacktestRequest) { r.EntryZ = 0 },
		"negative exit":    func(r *BacktestRequest) { r.ExitZ = -1 },
		"stop below entry": func(r *BacktestRequest) { r.StopLossZ = 1 },
		"tiny window":      func(r *BacktestRequest) { r.LookbackWindow = 1 },
	} {
		req := base
		mutate(&req)
		_, err := svc.RunBacktest(ctx, req)
		require.ErrorIs(t, err, ErrInvalidRequest, name)
	}

	req := base
	req.Ticker2 = "NOPE"
	_, err := svc.RunBacktest(ctx, req)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRunBacktest_InsufficientHistory(t *testing.T) {
	svc, _ := newService(t, 40)

	_, err := svc.RunBacktest(context.Background(), BacktestRequest{
		Ticker1: "LEGA", Ticker2: "LEGB",
		EntryZ: 2.0, ExitZ: 0.5, StopLossZ: 4.0, LookbackWindow: 30,
	})
	require.ErrorIs(t, err, backtest.ErrInsufficientData)
	require.False(t, errors.Is(err, ErrInvalidRequest), "data shortage is not a caller mistake")
}

func TestRunSensitivityGrid_SortedCells(t *testing.T) {
	svc, _ := newService(t, 300)

	points, err := svc.RunSensitivityGrid(context.Background(), GridRequest{
		Ticker1:        "LEGA",
		Ticker2:        "LEGB",
		EntryRange:     domain.GridRange{Min: 1.0, Max: 2.0, Step: 0.5},
		ExitRange:      domain.GridRange{Min: 0.0, Max: 1.0, Step: 0.5},
		StopLossZ:      5.0,
		LookbackWindow: 20,
	})
	require.NoError(t, err)
	require.NotEmpty(t, points)
	for i, p := range points {
		require.Less(t, p.ExitZ, p.EntryZ)
		if i > 0 {
			prev := points[i-1]
			ordered := prev.EntryZ < p.EntryZ || (prev.EntryZ == p.EntryZ && prev.ExitZ < p.ExitZ)
			require.True(t, ordered, "grid points must be sorted by (entry_z, exit_z)")
		}
	}
}

func TestRunSensitivityGrid_Validation(t *testing.T) {
	svc, _ := newService(t, 300)
	ctx := context.Background()

	_, err := svc.RunSensitivityGrid(ctx, GridRequest{
		Ticker1: "LEGA", Ticker2: "LEGB",
		EntryRange:     domain.GridRange{Min: 1, Max: 2, Step: 0},
		ExitRange:      domain.GridRange{Min: 0, Max: 1, Step: 0.5},
		StopLossZ:      5.0,
		LookbackWindow: 20,
	})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.RunSensitivityGrid(ctx, GridRequest{
		Ticker1: "LEGA", Ticker2: "LEGB",
		EntryRange:     domain.GridRange{Min: 1, Max: 2, Step: 0.5},
		ExitRange:      domain.GridRange{Min: 0, Max: 1, Step: 0.5},
		StopLossZ:      0,
		LookbackWindow: 20,
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}
