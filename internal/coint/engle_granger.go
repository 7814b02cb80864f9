// Package coint implements the Engle-Granger two-step cointegration
// test: an OLS cointegrating regression with intercept followed by an
// augmented Dickey-Fuller unit-root test on its residuals.
package coint

import (
	"gonum.org/v1/gonum/stat"
)

// Result holds the outcome of an Engle-Granger test.
type Result struct {
	Stat       float64 // ADF t-statistic on the residuals
	PValue     float64 // approximate MacKinnon p-value
	Crit5      float64 // 5% critical value, carried for diagnostics
	HedgeRatio float64 // OLS slope of the cointegrating regression
	Lag        int     // ADF augmentation lags selected by AIC
}

// EngleGranger tests whether a and b are cointegrated, with a as the
// dependent variable. The series must be aligned and equal length.
func EngleGranger(a, b []float64) (Result, error) {
	if len(a) != len(b) || len(a) < 12 {
		return Result{}, ErrTooFewRows
	}
	if stat.Variance(b, nil) == 0 {
		return Result{}, ErrDegenerateSeries
	}

	alpha, beta := stat.LinearRegression(b, a, nil, false)

	resid := make([]float64, len(a))
	for i := range a {
		resid[i] = a[i] - (alpha + beta*b[i])
	}
	if stat.Variance(resid, nil) == 0 {
		return Result{}, ErrDegenerateSeries
	}

	adf, err := adfNoConstant(resid, -1)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Stat:       adf.Stat,
		PValue:     pValue(adf.Stat, adf.Nobs),
		Crit5:      criticalValue(0.05, adf.Nobs),
		HedgeRatio: beta,
		Lag:        adf.Lag,
	}, nil
}
