// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	ScansTotal       prometheus.Counter
	PairsTested      prometheus.Counter
	PairsAccepted    prometheus.Counter
	PairsSkipped     prometheus.Counter
	ScansTruncated   prometheus.Counter
	ScanDuration     prometheus.Histogram
	ActiveCandidates prometheus.Gauge

	// Backtest metrics
	BacktestsTotal     *prometheus.CounterVec
	BacktestDuration   prometheus.Histogram
	GridCellsEvaluated prometheus.Counter

	// Storage metrics
	PriceRowsLoaded prometheus.Counter
	StoreErrors     *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pairslab"
	}

	return &Metrics{
		ScansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of universe scans executed",
		}),
		PairsTested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "pairs_tested_total",
			Help:      "Total number of pairs run through the cointegration test",
		}),
		PairsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "pairs_accepted_total",
			Help:      "Total number of pairs accepted as cointegrated",
		}),
		PairsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "pairs_skipped_total",
			Help:      "Total number of pairs skipped for short overlap or numerical failure",
		}),
		ScansTruncated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_truncated_total",
			Help:      "Total number of scans cut short by the caller deadline",
		}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Universe scan duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ActiveCandidates: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "active_candidates",
			Help:      "Number of candidates produced by the most recent scan",
		}),

		BacktestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of backtests by outcome",
		}, []string{"outcome"}),
		BacktestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "duration_seconds",
			Help:      "Backtest duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		GridCellsEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "grid_cells_total",
			Help:      "Total number of sensitivity grid cells evaluated",
		}),

		PriceRowsLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "price_rows_loaded_total",
			Help:      "Total number of daily price rows loaded from storage",
		}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of storage errors by store",
		}, []string{"store"}),
	}
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
