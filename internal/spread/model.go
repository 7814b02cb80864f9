// Package spread derives the stationary spread of a cointegrated pair
// and its normalized score, in both one-shot (scan-time) and rolling
// (backtest-time) forms.
package spread

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"pairslab/internal/align"
	"pairslab/internal/domain"
)

// Errors returned by the model.
var (
	ErrTooFewRows       = errors.New("too few observations for spread metrics")
	ErrDegenerateSeries = errors.New("degenerate series: zero variance")
	ErrBadWindow        = errors.New("lookback window must be at least 2")
)

// Metrics computes the one-shot spread statistics used at scan time:
// hedge ratio, AR(1) half-life and the full-sample z-score of the most
// recent spread value. Series must be aligned and equal length.
func Metrics(a, b []float64) (domain.SpreadStats, error) {
	if len(a) != len(b) || len(a) < align.MinObservations {
		return domain.SpreadStats{}, ErrTooFewRows
	}
	if stat.Variance(b, nil) == 0 {
		return domain.SpreadStats{}, ErrDegenerateSeries
	}

	// The intercept is estimated but not subtracted: the spread keeps it
	// in its mean, matching the z-score normalization below.
	_, beta := stat.LinearRegression(b, a, nil, false)

	s := Series(a, b, beta)

	// Full-sample z uses the population std: a zero-variance spread has
	// an undefined score, substituted by 0 rather than failing.
	mean := stat.Mean(s, nil)
	std := populationStd(s, mean)
	lastZ := 0.0
	if std > 0 {
		lastZ = (s[len(s)-1] - mean) / std
	}

	return domain.SpreadStats{
		HedgeRatio: beta,
		HalfLife:   halfLife(s),
		LastZScore: lastZ,
		SpreadMean: mean,
		SpreadStd:  std,
	}, nil
}

// Series computes spread = a - β·b.
func Series(a, b []float64, beta float64) []float64 {
	s := make([]float64, len(a))
	for i := range a {
		s[i] = a[i] - beta*b[i]
	}
	return s
}

// halfLife fits Δs(t) = c + φ·s(t-1) and converts φ to the expected
// half reversion time. φ ≥ 0 means no mean reversion: the sentinel is
// returned instead of a hard failure.
func halfLife(s []float64) float64 {
	n := len(s)
	lag := make([]float64, n-1)
	diff := make([]float64, n-1)
	for i := 1; i < n; i++ {
		lag[i-1] = s[i-1]
		diff[i-1] = s[i] - s[i-1]
	}
	if stat.Variance(lag, nil) == 0 {
		return domain.HalfLifeSentinel
	}
	_, phi := stat.LinearRegression(lag, diff, nil, false)
	if phi >= 0 {
		return domain.HalfLifeSentinel
	}
	return -math.Ln2 / phi
}

// Rolling computes the rolling z-score series for a pair under a fixed
// hedge ratio: trailing mean and sample std over windows of size
// window, with the first window-1 rows dropped. A window position with
// zero std scores 0.
func Rolling(dates []time.Time, a, b []float64, beta float64, window int) ([]domain.SpreadPoint, error) {
	if window < 2 {
		return nil, ErrBadWindow
	}
	if len(a) != len(b) || len(dates) != len(a) {
		return nil, ErrTooFewRows
	}
	if len(a) < window {
		return nil, ErrTooFewRows
	}

	s := Series(a, b, beta)
	points := make([]domain.SpreadPoint, 0, len(s)-window+1)
	for i := window - 1; i < len(s); i++ {
		win := s[i-window+1 : i+1]
		mean := stat.Mean(win, nil)
		std := math.Sqrt(stat.Variance(win, nil)) // sample std, n-1
		z := 0.0
		if std > 0 {
			z = (s[i] - mean) / std
		}
		points = append(points, domain.SpreadPoint{Date: dates[i], ZScore: z})
	}
	return points, nil
}

// populationStd is the n-denominator standard deviation.
func populationStd(s []float64, mean float64) float64 {
	var sum float64
	for _, v := range s {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(s)))
}
