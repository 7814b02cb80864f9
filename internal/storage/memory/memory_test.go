package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pairslab/internal/domain"
	"pairslab/internal/storage"
)

func d(n int) time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestDailyPriceStore_InsertAndGetSeries(t *testing.T) {
	store := NewDailyPriceStore()
	ctx := context.Background()

	// Out-of-order insert must come back sorted by date.
	err := store.InsertBulk(ctx, []domain.DailyPrice{
		{Symbol: "AAA", Date: d(2), Close: 12},
		{Symbol: "AAA", Date: d(0), Close: 10},
		{Symbol: "AAA", Date: d(1), Close: 11},
		{Symbol: "BBB", Date: d(0), Close: 20},
	})
	require.NoError(t, err)

	series, err := store.GetSeries(ctx, "AAA", d(0), d(2))
	require.NoError(t, err)
	require.Equal(t, "AAA", series.Symbol)
	require.Equal(t, []float64{10, 11, 12}, series.Closes)
	require.True(t, series.Dates[0].Before(series.Dates[1]))

	// Range bounds are inclusive.
	series, err = store.GetSeries(ctx, "AAA", d(1), d(1))
	require.NoError(t, err)
	require.Equal(t, []float64{11}, series.Closes)
}

func TestDailyPriceStore_GetSeriesNotFound(t *testing.T) {
	store := NewDailyPriceStore()
	ctx := context.Background()

	_, err := store.GetSeries(ctx, "NOPE", d(0), d(10))
	require.ErrorIs(t, err, storage.ErrNotFound)

	// A known symbol with no rows inside the range is also not found.
	require.NoError(t, store.InsertBulk(ctx, []domain.DailyPrice{
		{Symbol: "AAA", Date: d(0), Close: 10},
	}))
	_, err = store.GetSeries(ctx, "AAA", d(5), d(10))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDailyPriceStore_InsertValidation(t *testing.T) {
	store := NewDailyPriceStore()
	err := store.InsertBulk(context.Background(), []domain.DailyPrice{
		{Symbol: "", Date: d(0), Close: 10},
	})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestDailyPriceStore_Symbols(t *testing.T) {
	store := NewDailyPriceStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []domain.DailyPrice{
		{Symbol: "ZZZ", Date: d(0), Close: 1},
		{Symbol: "AAA", Date: d(0), Close: 2},
	}))

	symbols, err := store.Symbols(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"AAA", "ZZZ"}, symbols)
}

func TestCandidateStore_ReplaceAllIsAtomic(t *testing.T) {
	store := NewCandidateStore()
	ctx := context.Background()

	first := []domain.PairCandidate{
		{Ticker1: "AAA", Ticker2: "BBB", PValue: 0.04, IsActive: true},
	}
	require.NoError(t, store.ReplaceAll(ctx, first))

	second := []domain.PairCandidate{
		{Ticker1: "CCC", Ticker2: "DDD", PValue: 0.02, IsActive: true},
		{Ticker1: "EEE", Ticker2: "FFF", PValue: 0.01, IsActive: true},
	}
	require.NoError(t, store.ReplaceAll(ctx, second))

	got, err := store.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, c := range got {
		require.NotEqual(t, "AAA", c.Ticker1, "previous set must be fully replaced")
	}
}

func TestCandidateStore_GetActiveOrderingAndFilter(t *testing.T) {
	store := NewCandidateStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, []domain.PairCandidate{
		{Ticker1: "AAA", Ticker2: "BBB", PValue: 0.04, IsActive: true},
		{Ticker1: "CCC", Ticker2: "DDD", PValue: 0.01, IsActive: true},
		{Ticker1: "EEE", Ticker2: "FFF", PValue: 0.001, IsActive: false},
	}))

	got, err := store.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "CCC", got[0].Ticker1)
	require.Equal(t, "AAA", got[1].Ticker1)
}

func TestCandidateStore_ReplaceAllCopiesInput(t *testing.T) {
	store := NewCandidateStore()
	ctx := context.Background()

	input := []domain.PairCandidate{
		{Ticker1: "AAA", Ticker2: "BBB", PValue: 0.04, IsActive: true},
	}
	require.NoError(t, store.ReplaceAll(ctx, input))
	input[0].Ticker1 = "MUTATED"

	got, err := store.GetActive(ctx)
	require.NoError(t, err)
	require.Equal(t, "AAA", got[0].Ticker1)
}

func TestCandidateStore_ReplaceAllValidation(t *testing.T) {
	store := NewCandidateStore()
	err := store.ReplaceAll(context.Background(), []domain.PairCandidate{
		{Ticker1: "", Ticker2: "BBB"},
	})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestCandidateStore_ReplaceAllEmptyClearsSet(t *testing.T) {
	store := NewCandidateStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, []domain.PairCandidate{
		{Ticker1: "AAA", Ticker2: "BBB", PValue: 0.04, IsActive: true},
	}))
	require.NoError(t, store.ReplaceAll(ctx, nil))

	got, err := store.GetActive(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}
