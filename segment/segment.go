// Package segment fits a single window of samples to a predictor, quantizes the
// resulting residuals, and — in auto mode — selects the best-fitting predictor among
// the three closed variants.
package segment

import (
	"math"

	"github.com/gcomneno/lasagna-v2/internal/pool"
	"github.com/gcomneno/lasagna-v2/predictor"
)

// Fit is the result of fitting one predictor to one window: its parameters, the
// quantization step it was fit with, the quantized integer residuals, and the
// resulting post-decode MSE.
type Fit struct {
	Params    predictor.Params
	Q         float64
	Residuals []int64
	PostMSE   float64
}

// FitWith fits predictor type t to x, quantizing residuals with step
// Q = max(cQ*stddev(residuals), qMin).
func FitWith(x []float64, t predictor.Type, cQ, qMin float64) Fit {
	params := predictor.Fit(t, x)
	xhat := predictor.Reconstruct(params, len(x))

	residuals, cleanup := pool.GetFloat64Slice(len(x))
	defer cleanup()
	for i := range x {
		residuals[i] = x[i] - xhat[i]
	}

	sigma := stddev(residuals)
	q := math.Max(cQ*sigma, qMin)

	quantized := make([]int64, len(x))
	var sumSqErr float64
	for i, r := range residuals {
		qi := math.RoundToEven(r / q)
		quantized[i] = int64(qi)

		recon := xhat[i] + qi*q
		err := x[i] - recon
		sumSqErr += err * err
	}

	postMSE := sumSqErr / float64(len(x))

	return Fit{Params: params, Q: q, Residuals: quantized, PostMSE: postMSE}
}

// SelectBest fits all three predictors to x and returns the one with the lowest
// post-decode MSE, breaking ties by the fixed priority linear > mean > rw.
func SelectBest(x []float64, cQ, qMin float64) Fit {
	candidates := []predictor.Type{predictor.Linear, predictor.Mean, predictor.RW}

	best := FitWith(x, candidates[0], cQ, qMin)
	for _, t := range candidates[1:] {
		fit := FitWith(x, t, cQ, qMin)
		if fit.PostMSE < best.PostMSE {
			best = fit
		}
	}

	return best
}

func stddev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	var sum float64
	for _, v := range x {
		sum += v
	}
	mu := sum / float64(len(x))

	var sumSq float64
	for _, v := range x {
		d := v - mu
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(len(x)))
}
