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
	"pairslab/internal/statarb"
	"pairslab/internal/storage"
	chstore "pairslab/internal/storage/clickhouse"
	"pairslab/internal/storage/memory"
)

func main() {
	// Parse flags
	ticker1 := flag.String("ticker1", "", "First leg symbol (required)")
	ticker2 := flag.String("ticker2", "", "Second leg symbol (required)")

	// Strategy parameters
	entryZ := flag.Float64("entry-z", 2.0, "Entry threshold on |z|")
	exitZ := flag.Float64("exit-z", 0.0, "Exit threshold toward the mean")
	stopLossZ := flag.Float64("stop-loss-z", 4.0, "Stop loss threshold on |z|")
	window := flag.Int("window", 30, "Rolling z-score lookback window")
	start := flag.String("start", "", "History start date YYYY-MM-DD (empty = trailing 5y)")
	end := flag.String("end", "", "History end date YYYY-MM-DD")

	// Storage
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (daily prices)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")

	// Output
	outputJSON := flag.Bool("json", false, "Output full result as JSON")

	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.With().Str("component", "backtest").Logger()

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

	req := statarb.BacktestRequest{
		Ticker1:        strings.ToUpper(*ticker1),
		Ticker2:        strings.ToUpper(*ticker2),
		EntryZ:         *entryZ,
		ExitZ:          *exitZ,
		StopLossZ:      *stopLossZ,
		LookbackWindow: *window,
	}
	var err error
	if req.Start, err = parseDate(*start); err != nil {
		logger.Fatal().Err(err).Msg("--start")
	}
	if req.End, err = parseDate(*end); err != nil {
		logger.Fatal().Err(err).Msg("--end")
	}

	logger.Info().
		Str("pair", req.Ticker1+"/"+req.Ticker2).
		Float64("entry_z", req.EntryZ).
		Float64("exit_z", req.ExitZ).
		Float64("stop_loss_z", req.StopLossZ).
		Msg("running backtest")

	result, err := service.RunBacktest(ctx, req)
	if err != nil {
		logger.Fatal().Err(err).Msg("backtest failed")
	}

	if *outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return
	}
	printMetrics(req, result.Metrics)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// printMetrics writes a human-readable summary to stdout.
func printMetrics(req statarb.BacktestRequest, m domain.BacktestMetrics) {
	fmt.Printf("Pair:          %s / %s\n", req.Ticker1, req.Ticker2)
	fmt.Printf("Hedge Ratio:   %.4f\n", m.HedgeRatio)
	fmt.Printf("Total Return:  %.4f\n", m.TotalReturn)
	fmt.Printf("Sharpe Ratio:  %.4f\n", m.SharpeRatio)
	fmt.Printf("Max Drawdown:  %.4f\n", m.MaxDrawdown)
	fmt.Printf("Win Rate:      %.4f\n", m.WinRate)
	fmt.Printf("Trades:        %d\n", m.TradeCount)
}
