package coint

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// adfResult is the unit-root regression outcome on one series.
type adfResult struct {
	Stat float64 // t-statistic on the lagged level
	Lag  int     // augmentation lags used
	Nobs int     // effective observations
}

// adfNoConstant runs an augmented Dickey-Fuller regression without
// deterministic terms:
//
//	Δu(t) = γ·u(t-1) + Σ δ_i·Δu(t-i) + ε(t)
//
// suited to regression residuals, which are zero-mean by construction.
// The augmentation order is chosen by AIC over 0..maxLag on a common
// sample, then the statistic is re-estimated on the full usable sample
// for the chosen lag.
func adfNoConstant(u []float64, maxLag int) (adfResult, error) {
	n := len(u)
	if maxLag < 0 {
		// Schwert rule, the conventional default.
		maxLag = int(math.Floor(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if upper := n/2 - 2; maxLag > upper {
		maxLag = upper
	}
	if maxLag < 0 {
		maxLag = 0
	}
	if n < maxLag+10 {
		return adfResult{}, ErrTooFewRows
	}

	du := make([]float64, n-1)
	for i := 1; i < n; i++ {
		du[i-1] = u[i] - u[i-1]
	}

	// Lag selection on the sample trimmed by maxLag so every candidate
	// sees the same observations.
	bestLag, bestAIC := 0, math.Inf(1)
	for k := 0; k <= maxLag; k++ {
		_, _, ssr, nobs, err := adfRegress(u, du, k, maxLag)
		if err != nil {
			continue
		}
		aic := float64(nobs)*math.Log(ssr/float64(nobs)) + 2*float64(k+1)
		if aic < bestAIC {
			bestAIC = aic
			bestLag = k
		}
	}
	if math.IsInf(bestAIC, 1) {
		return adfResult{}, ErrDegenerateSeries
	}

	gamma, se, _, nobs, err := adfRegress(u, du, bestLag, bestLag)
	if err != nil {
		return adfResult{}, err
	}
	if se == 0 || math.IsNaN(se) {
		return adfResult{}, ErrDegenerateSeries
	}

	return adfResult{Stat: gamma / se, Lag: bestLag, Nobs: nobs}, nil
}

// adfRegress fits the ADF regression with k augmentation lags, trimming
// the first trim observations of the differenced series. Returns the
// coefficient and standard error of the lagged level term.
func adfRegress(u, du []float64, k, trim int) (gamma, se, ssr float64, nobs int, err error) {
	// du index t corresponds to Δu(t+1); usable rows start where all k
	// lagged differences exist.
	start := trim
	if k > start {
		start = k
	}
	nobs = len(du) - start
	if nobs <= k+2 {
		return 0, 0, 0, 0, ErrTooFewRows
	}

	y := make([]float64, nobs)
	x := mat.NewDense(nobs, k+1, nil)
	for i := 0; i < nobs; i++ {
		t := start + i
		y[i] = du[t]
		x.Set(i, 0, u[t]) // lagged level
		for j := 1; j <= k; j++ {
			x.Set(i, j, du[t-j])
		}
	}

	coef, stderr, ssr, err := olsFit(y, x)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return coef[0], stderr[0], ssr, nobs, nil
}
