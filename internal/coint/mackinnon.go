package coint

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// MacKinnon (2010) response-surface coefficients for the Engle-Granger
// residual test with two variables and a constant in the cointegrating
// regression: cv(T) = b0 + b1/T + b2/T².
var egCritSurface = []struct {
	level      float64
	b0, b1, b2 float64
}{
	{0.01, -3.89644, -10.9519, -22.527},
	{0.05, -3.33613, -6.1101, -6.823},
	{0.10, -3.04445, -4.2412, -2.720},
}

// Probit values at the tabulated significance levels.
var egProbit = []float64{-2.3263478740408408, -1.6448536269514722, -1.2815515655446004}

// criticalValue returns the finite-sample critical value at one of the
// tabulated levels (0.01, 0.05, 0.10) for nobs observations.
func criticalValue(level float64, nobs int) float64 {
	t := float64(nobs)
	for _, row := range egCritSurface {
		if row.level == level {
			return row.b0 + row.b1/t + row.b2/t/t
		}
	}
	return math.NaN()
}

// pValue maps a test statistic to an approximate p-value by piecewise
// linear interpolation in probit space through the tabulated critical
// values, extrapolating with the edge segment slopes. Accurate near the
// 5% decision boundary, monotone everywhere.
func pValue(stat float64, nobs int) float64 {
	taus := make([]float64, len(egCritSurface))
	for i, row := range egCritSurface {
		t := float64(nobs)
		taus[i] = row.b0 + row.b1/t + row.b2/t/t
	}
	// taus ascend with level (1% is the most negative).
	if !sort.Float64sAreSorted(taus) {
		sort.Float64s(taus)
	}

	var q float64
	switch {
	case stat <= taus[0]:
		q = egProbit[0] + (stat-taus[0])*segSlope(taus, 0)
	case stat >= taus[len(taus)-1]:
		last := len(taus) - 2
		q = egProbit[len(taus)-1] + (stat-taus[len(taus)-1])*segSlope(taus, last)
	default:
		for i := 0; i+1 < len(taus); i++ {
			if stat <= taus[i+1] {
				q = egProbit[i] + (stat-taus[i])*segSlope(taus, i)
				break
			}
		}
	}

	p := distuv.UnitNormal.CDF(q)
	if p < 1e-6 {
		p = 1e-6
	}
	if p > 0.999 {
		p = 0.999
	}
	return p
}

// segSlope is the probit-per-tau slope of segment i.
func segSlope(taus []float64, i int) float64 {
	return (egProbit[i+1] - egProbit[i]) / (taus[i+1] - taus[i])
}
