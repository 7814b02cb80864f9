package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pairslab/internal/domain"
	"pairslab/internal/storage"
)

func tradeDate(n int) time.Time {
	return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestDailyPriceStore_InsertAndGetSeries(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewDailyPriceStore(conn)

	err := store.InsertBulk(ctx, []domain.DailyPrice{
		{Symbol: "AAA", Date: tradeDate(0), Close: 10.5},
		{Symbol: "AAA", Date: tradeDate(1), Close: 11.25},
		{Symbol: "AAA", Date: tradeDate(2), Close: 12.0},
		{Symbol: "BBB", Date: tradeDate(0), Close: 20.0},
	})
	require.NoError(t, err)

	series, err := store.GetSeries(ctx, "AAA", tradeDate(0), tradeDate(2))
	require.NoError(t, err)
	require.Equal(t, "AAA", series.Symbol)
	require.Equal(t, []float64{10.5, 11.25, 12.0}, series.Closes)
	require.Len(t, series.Dates, 3)
	for i := 1; i < len(series.Dates); i++ {
		require.True(t, series.Dates[i].After(series.Dates[i-1]))
	}

	// Range bounds are inclusive.
	series, err = store.GetSeries(ctx, "AAA", tradeDate(1), tradeDate(1))
	require.NoError(t, err)
	require.Equal(t, []float64{11.25}, series.Closes)
}

func TestDailyPriceStore_GetSeriesNotFound(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewDailyPriceStore(conn)

	_, err := store.GetSeries(ctx, "NOPE", tradeDate(0), tradeDate(10))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDailyPriceStore_InsertValidation(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailyPriceStore(conn)
	err := store.InsertBulk(context.Background(), []domain.DailyPrice{
		{Symbol: "", Date: tradeDate(0), Close: 1},
	})
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	require.NoError(t, store.InsertBulk(context.Background(), nil))
}

func TestDailyPriceStore_Symbols(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewDailyPriceStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []domain.DailyPrice{
		{Symbol: "ZZZ", Date: tradeDate(0), Close: 1},
		{Symbol: "AAA", Date: tradeDate(0), Close: 2},
		{Symbol: "AAA", Date: tradeDate(1), Close: 3},
	}))

	symbols, err := store.Symbols(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"AAA", "ZZZ"}, symbols)
}
