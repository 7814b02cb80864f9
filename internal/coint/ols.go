package coint

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Errors returned by the estimation helpers.
var (
	ErrDegenerateSeries = errors.New("degenerate series: zero variance regressor")
	ErrTooFewRows       = errors.New("too few observations for regression")
)

// olsFit solves y = X·β by least squares and returns the coefficient
// vector, its standard errors and the residual sum of squares.
// X is n×p with n > p.
func olsFit(y []float64, x *mat.Dense) (coef, stderr []float64, ssr float64, err error) {
	n, p := x.Dims()
	if n <= p {
		return nil, nil, 0, ErrTooFewRows
	}

	var qr mat.QR
	qr.Factorize(x)

	yVec := mat.NewVecDense(n, y)
	betaVec := mat.NewVecDense(p, nil)
	if err := qr.SolveVecTo(betaVec, false, yVec); err != nil {
		return nil, nil, 0, ErrDegenerateSeries
	}

	// Residuals and their sum of squares.
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(x, betaVec)
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}

	// Coefficient covariance: σ²·(XᵀX)⁻¹.
	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	var xtxInv mat.SymDense
	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, nil, 0, ErrDegenerateSeries
	}
	if err := chol.InverseTo(&xtxInv); err != nil {
		return nil, nil, 0, ErrDegenerateSeries
	}

	sigma2 := ssr / float64(n-p)
	coef = make([]float64, p)
	stderr = make([]float64, p)
	for j := 0; j < p; j++ {
		coef[j] = betaVec.AtVec(j)
		stderr[j] = math.Sqrt(sigma2 * xtxInv.At(j, j))
	}
	return coef, stderr, ssr, nil
}
