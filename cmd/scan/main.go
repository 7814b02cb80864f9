package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pairslab/internal/observability"
	"pairslab/internal/reporting"
	"pairslab/internal/scanner"
	"pairslab/internal/statarb"
	"pairslab/internal/storage"
	chstore "pairslab/internal/storage/clickhouse"
	"pairslab/internal/storage/memory"
	"pairslab/internal/storage/migrations"
	pgstore "pairslab/internal/storage/postgres"
)

func main() {
	// Parse flags
	tickers := flag.String("tickers", "", "Comma-separated universe (empty = every stored symbol)")
	significance := flag.Float64("significance", scanner.DefaultSignificance, "P-value threshold for accepting a pair")
	minObs := flag.Int("min-observations", 0, "Minimum aligned rows per pair (0 = default)")
	workers := flag.Int("workers", 0, "Scan worker count (0 = NumCPU)")
	timeout := flag.Duration("timeout", 10*time.Minute, "Scan deadline")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (candidate persistence)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (daily prices)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	migrate := flag.Bool("migrate", false, "Run migrations before scanning")

	// Output
	outputJSON := flag.Bool("json", false, "Output candidates as JSON")
	outputCSV := flag.Bool("csv", false, "Output candidates as CSV")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address while scanning")

	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.With().Str("component", "scan").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn().Stringer("signal", sig).Msg("shutting down")
		cancel()
	}()

	// Create stores
	var priceStore storage.DailyPriceStore = memory.NewDailyPriceStore()
	var candidateStore storage.CandidateStore = memory.NewCandidateStore()

	if !*useMemory {
		if *clickhouseDSN == "" {
			logger.Fatal().Msg("--clickhouse-dsn is required when not using --use-memory (daily prices)")
		}
		if *postgresDSN == "" {
			logger.Fatal().Msg("--postgres-dsn is required when not using --use-memory (candidates)")
		}

		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to clickhouse")
		}
		defer conn.Close()
		priceStore = chstore.NewDailyPriceStore(conn)

		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()
		candidateStore = pgstore.NewCandidateStore(pool)

		if *migrate {
			if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
				logger.Fatal().Err(err).Msg("clickhouse migrations")
			}
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				logger.Fatal().Err(err).Msg("postgres migrations")
			}
		}
	}

	metrics := observability.NewMetrics("pairslab")
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	service := statarb.New(statarb.Options{
		PriceStore:     priceStore,
		CandidateStore: candidateStore,
		ScanOptions: scanner.Options{
			Significance:    *significance,
			MinObservations: *minObs,
			MaxWorkers:      *workers,
		},
		Metrics: metrics,
		Logger:  logger,
	})

	universe, err := resolveUniverse(ctx, *tickers, priceStore)
	if err != nil {
		logger.Fatal().Err(err).Msg("resolve universe")
	}

	logger.Info().Int("universe", len(universe)).Float64("significance", *significance).Msg("starting scan")

	candidates, err := service.ScanUniverse(ctx, universe)
	if err != nil {
		logger.Fatal().Err(err).Msg("scan failed")
	}

	switch {
	case *outputJSON:
		output, _ := json.MarshalIndent(candidates, "", "  ")
		fmt.Println(string(output))
	case *outputCSV:
		fmt.Print(reporting.RenderCandidatesCSV(candidates))
	default:
		report := &reporting.Report{
			GeneratedAt: time.Now().UTC(),
			ScanSummary: reporting.ScanSummary{
				UniverseSize: len(universe),
				PairsTested:  len(universe) * (len(universe) - 1) / 2,
				Significance: *significance,
			},
			Candidates: candidates,
		}
		fmt.Print(reporting.RenderMarkdown(report))
	}
}

// resolveUniverse splits the --tickers flag, or lists every stored
// symbol when the flag is empty.
func resolveUniverse(ctx context.Context, flagValue string, prices storage.DailyPriceStore) ([]string, error) {
	if flagValue != "" {
		parts := strings.Split(flagValue, ",")
		universe := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.ToUpper(strings.TrimSpace(p)); t != "" {
				universe = append(universe, t)
			}
		}
		return universe, nil
	}
	return prices.Symbols(ctx)
}
