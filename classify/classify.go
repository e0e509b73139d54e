// Package classify computes the qualitative pattern tag and salience level for an
// already-fit segment, so a container can be inspected without decoding residuals.
package classify

import (
	"math"

	"github.com/gcomneno/lasagna-v2/predictor"
)

// Pattern is the closed set of qualitative shapes a segment can be tagged with.
type Pattern uint8

const (
	// Flat marks a segment with low energy and negligible slope.
	Flat Pattern = iota
	// Trend marks a segment with a slope magnitude at or above the trend threshold.
	Trend
	// Oscillation marks a segment whose first differences change sign often.
	Oscillation
	// Noisy is the fallback when none of the above apply.
	Noisy
)

// String returns the human-readable name of the pattern.
func (p Pattern) String() string {
	switch p {
	case Flat:
		return "flat"
	case Trend:
		return "trend"
	case Oscillation:
		return "oscillation"
	case Noisy:
		return "noisy"
	default:
		return "unknown"
	}
}

// Thresholds parameterizes pattern and salience classification. It is part of the
// caller's configuration (see the root package's Config) so results stay
// reproducible across runs with the same settings.
type Thresholds struct {
	EFlat  float64 // energy/L ceiling for Flat
	SFlat  float64 // slope magnitude ceiling for Flat
	STrend float64 // slope magnitude floor for Trend
	COsc   float64 // sign-change fraction floor for Oscillation
	ELow   float64 // energy/L ceiling for salience 0
	EHigh  float64 // energy/L floor for salience 2
}

// DefaultThresholds returns the thresholds used when a caller does not override them.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EFlat:  0.01,
		SFlat:  0.01,
		STrend: 0.1,
		COsc:   0.4,
		ELow:   0.01,
		EHigh:  1.0,
	}
}

// Result is a segment's classification.
type Result struct {
	Pattern  Pattern
	Salience uint8
	Energy   float64
}

// Classify computes the pattern tag and salience for a segment given its samples,
// its fitted predictor parameters, and the configured thresholds. If the segment was
// not fit with the linear predictor, Classify refits a local OLS slope to evaluate
// the trend tests, since the segment's own params may not carry a slope (mean, rw).
func Classify(x []float64, params predictor.Params, t Thresholds) Result {
	l := len(x)
	mu := meanOf(x)

	var energy float64
	for _, v := range x {
		d := v - mu
		energy += d * d
	}

	slope := params.Slope
	if params.Type != predictor.Linear {
		slope = predictor.Fit(predictor.Linear, x).Slope
	}
	slopeMag := math.Abs(slope)

	perPoint := energy / float64(l)

	pattern := classifyPattern(x, perPoint, slopeMag, t)
	salience := classifySalience(perPoint, t)

	return Result{Pattern: pattern, Salience: salience, Energy: energy}
}

func classifyPattern(x []float64, perPoint, slopeMag float64, t Thresholds) Pattern {
	if perPoint < t.EFlat && slopeMag < t.SFlat {
		return Flat
	}

	if slopeMag >= t.STrend {
		return Trend
	}

	if isOscillation(x, t.COsc) {
		return Oscillation
	}

	return Noisy
}

func classifySalience(perPoint float64, t Thresholds) uint8 {
	switch {
	case perPoint < t.ELow:
		return 0
	case perPoint >= t.EHigh:
		return 2
	default:
		return 1
	}
}

// isOscillation reports whether the fraction of sign changes across consecutive
// first differences meets or exceeds cOsc.
func isOscillation(x []float64, cOsc float64) bool {
	l := len(x)
	if l < 3 {
		return false
	}

	diffs := make([]float64, l-1)
	for i := 1; i < l; i++ {
		diffs[i-1] = x[i] - x[i-1]
	}

	var changes int
	for i := 1; i < len(diffs); i++ {
		if sign(diffs[i]) != sign(diffs[i-1]) && sign(diffs[i]) != 0 && sign(diffs[i-1]) != 0 {
			changes++
		}
	}

	return float64(changes) >= cOsc*float64(l-1)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func meanOf(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}

	return sum / float64(len(x))
}
