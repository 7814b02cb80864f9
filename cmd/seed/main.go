package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pairslab/internal/domain"
	chstore "pairslab/internal/storage/clickhouse"
	"pairslab/internal/storage/migrations"
)

func main() {
	// Parse flags
	pairs := flag.Int("pairs", 4, "Number of cointegrated pairs to generate")
	singles := flag.Int("singles", 4, "Number of independent walks to generate")
	days := flag.Int("days", 750, "Trading days per symbol")
	seed := flag.Int64("seed", 42, "RNG seed (fixed for reproducible datasets)")
	start := flag.String("start", "2023-01-02", "First trading date YYYY-MM-DD")

	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")
	migrate := flag.Bool("migrate", true, "Run migrations before inserting")

	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.With().Str("component", "seed").Logger()

	if *clickhouseDSN == "" {
		logger.Fatal().Msg("--clickhouse-dsn is required")
	}
	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		logger.Fatal().Err(err).Msg("--start")
	}

	ctx := context.Background()

	conn, err := chstore.NewConn(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to clickhouse")
	}
	defer conn.Close()

	if *migrate {
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			logger.Fatal().Err(err).Msg("clickhouse migrations")
		}
	}

	priceStore := chstore.NewDailyPriceStore(conn)
	rng := rand.New(rand.NewSource(*seed))
	dates := tradingDays(startDate, *days)

	rows := make([]domain.DailyPrice, 0, (*pairs*2+*singles)**days)
	for i := 0; i < *pairs; i++ {
		a, b := cointegratedPair(rng, *days)
		rows = appendSeries(rows, fmt.Sprintf("PAIR%02dA", i+1), dates, a)
		rows = appendSeries(rows, fmt.Sprintf("PAIR%02dB", i+1), dates, b)
	}
	for i := 0; i < *singles; i++ {
		rows = appendSeries(rows, fmt.Sprintf("SOLO%02d", i+1), dates, randomWalk(rng, *days))
	}

	if err := priceStore.InsertBulk(ctx, rows); err != nil {
		logger.Fatal().Err(err).Msg("insert prices")
	}

	logger.Info().
		Int("symbols", *pairs*2+*singles).
		Int("days", *days).
		Int("rows", len(rows)).
		Msg("seeded market data")
}

// tradingDays returns n weekdays starting at start.
func tradingDays(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := start.UTC().Truncate(24 * time.Hour)
	for len(out) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

// cointegratedPair generates two price series sharing a stochastic
// trend: leg B is a geometric walk and leg A tracks beta*B plus a
// mean-reverting residual, so an OLS hedge recovers roughly beta.
func cointegratedPair(rng *rand.Rand, n int) (a, b []float64) {
	beta := 1.2 + rng.Float64()*1.3
	a = make([]float64, n)
	b = make([]float64, n)

	logB := 0.0
	resid := 0.0
	for t := 0; t < n; t++ {
		logB += 0.0003 + 0.012*rng.NormFloat64()
		resid = 0.92*resid + 0.35*rng.NormFloat64()
		b[t] = 50 * math.Exp(logB)
		a[t] = beta*b[t] + resid
	}
	return a, b
}

// randomWalk generates an independent geometric walk.
func randomWalk(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	logP := 0.0
	for t := 0; t < n; t++ {
		logP += 0.0002 + 0.015*rng.NormFloat64()
		out[t] = 100 * math.Exp(logP)
	}
	return out
}

func appendSeries(rows []domain.DailyPrice, symbol string, dates []time.Time, closes []float64) []domain.DailyPrice {
	for i, d := range dates {
		rows = append(rows, domain.DailyPrice{Symbol: symbol, Date: d, Close: closes[i]})
	}
	return rows
}
