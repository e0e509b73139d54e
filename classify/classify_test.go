package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/lasagna-v2/predictor"
)

func TestPattern_String(t *testing.T) {
	require.Equal(t, "flat", Flat.String())
	require.Equal(t, "trend", Trend.String())
	require.Equal(t, "oscillation", Oscillation.String())
	require.Equal(t, "noisy", Noisy.String())
	require.Equal(t, "unknown", Pattern(0xFF).String())
}

func TestClassify_FlatConstantSeries(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = 5.0
	}

	params := predictor.Fit(predictor.Mean, x)
	result := Classify(x, params, DefaultThresholds())

	require.Equal(t, Flat, result.Pattern)
	require.Equal(t, uint8(0), result.Salience)
	require.InDelta(t, 0.0, result.Energy, 1e-12)
}

func TestClassify_Trend(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = float64(i) * 2.0
	}

	params := predictor.Fit(predictor.Linear, x)
	result := Classify(x, params, DefaultThresholds())

	require.Equal(t, Trend, result.Pattern)
}

func TestClassify_Oscillation(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		if i%2 == 0 {
			x[i] = 1.0
		} else {
			x[i] = -1.0
		}
	}

	params := predictor.Fit(predictor.Mean, x)
	result := Classify(x, params, DefaultThresholds())

	require.Equal(t, Oscillation, result.Pattern)
}

func TestClassify_HighSalienceForHighEnergy(t *testing.T) {
	x := make([]float64, 10)
	for i := range x {
		x[i] = float64(i) * 100.0
	}

	params := predictor.Fit(predictor.Linear, x)
	result := Classify(x, params, DefaultThresholds())

	require.Equal(t, uint8(2), result.Salience)
}

func TestClassify_RefitsSlopeWhenPredictorIsNotLinear(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = float64(i) * 5.0
	}

	meanParams := predictor.Fit(predictor.Mean, x)
	linearParams := predictor.Fit(predictor.Linear, x)

	fromMean := Classify(x, meanParams, DefaultThresholds())
	fromLinear := Classify(x, linearParams, DefaultThresholds())

	require.Equal(t, fromLinear.Pattern, fromMean.Pattern)
}
