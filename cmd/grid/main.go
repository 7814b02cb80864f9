package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pairslab/internal/domain"
	"pairslab/internal/reporting"
	"pairslab/internal/statarb"
	"pairslab/internal/storage"
	chstore "pairslab/internal/storage/clickhouse"
	"pairslab/internal/storage/memory"
)

func main() {
	// Parse flags
	ticker1 := flag.String("ticker1", "", "First leg symbol (required)")
	ticker2 := flag.String("ticker2", "", "Second leg symbol (required)")

	// Grid axes
	entryMin := flag.Float64("entry-min", 1.5, "Entry threshold axis start")
	entryMax := flag.Float64("entry-max", 3.0, "Entry threshold axis end (inclusive)")
	entryStep := flag.Float64("entry-step", 0.25, "Entry threshold axis step")
	exitMin := flag.Float64("exit-min", 0.0, "Exit threshold axis start")
	exitMax := flag.Float64("exit-max", 1.0, "Exit threshold axis end (inclusive)")
	exitStep := flag.Float64("exit-step", 0.25, "Exit threshold axis step")

	stopLossZ := flag.Float64("stop-loss-z", 4.0, "Stop loss threshold shared by every cell")
	window := flag.Int("window", 30, "Rolling z-score lookback window")

	// Storage
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (daily prices)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")

	// Output
	outputJSON := flag.Bool("json", false, "Output grid as JSON")
	outputMarkdown := flag.Bool("markdown", false, "Output grid as a Markdown table")

	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.With().Str("component", "grid").Logger()

	if *ticker1 == "" || *ticker2 == "" {
		logger.Fatal().Msg("--ticker1 and --ticker2 are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn().Stringer("signal", sig).Msg("shutting down")
		cancel()
	}()

	var priceStore storage.DailyPriceStore = memory.NewDailyPriceStore()
	if !*useMemory {
		if *clickhouseDSN == "" {
			logger.Fatal().Msg("--clickhouse-dsn is required when not using --use-memory")
		}
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to clickhouse")
		}
		defer conn.Close()
		priceStore = chstore.NewDailyPriceStore(conn)
	}

	service := statarb.New(statarb.Options{
		PriceStore: priceStore,
		Logger:     logger,
	})

	req := statarb.GridRequest{
		Ticker1:        strings.ToUpper(*ticker1),
		Ticker2:        strings.ToUpper(*ticker2),
		EntryRange:     domain.GridRange{Min: *entryMin, Max: *entryMax, Step: *entryStep},
		ExitRange:      domain.GridRange{Min: *exitMin, Max: *exitMax, Step: *exitStep},
		StopLossZ:      *stopLossZ,
		LookbackWindow: *window,
	}

	logger.Info().
		Str("pair", req.Ticker1+"/"+req.Ticker2).
		Float64("entry_min", *entryMin).
		Float64("entry_max", *entryMax).
		Float64("exit_min", *exitMin).
		Float64("exit_max", *exitMax).
		Msg("running sensitivity grid")

	points, err := service.RunSensitivityGrid(ctx, req)
	if err != nil {
		logger.Fatal().Err(err).Msg("grid failed")
	}

	switch {
	case *outputJSON:
		output, _ := json.MarshalIndent(points, "", "  ")
		fmt.Println(string(output))
	case *outputMarkdown:
		report := &reporting.Report{
			GeneratedAt: time.Now().UTC(),
			GridPair:    req.Ticker1 + "/" + req.Ticker2,
			Grid:        points,
		}
		fmt.Print(reporting.RenderMarkdown(report))
	default:
		fmt.Print(reporting.RenderGridCSV(points))
	}
}
