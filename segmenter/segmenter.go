// Package segmenter partitions a time series into segments, either by fixed-length
// windows or by adaptively growing a window until its post-decode MSE would exceed a
// configured threshold.
package segmenter

import (
	"github.com/gcomneno/lasagna-v2/predictor"
	"github.com/gcomneno/lasagna-v2/segment"
)

// PredictorMode selects which predictor a segment is fit with.
type PredictorMode uint8

const (
	// PredictorMean forces the mean predictor.
	PredictorMean PredictorMode = iota
	// PredictorLinear forces the linear (OLS) predictor.
	PredictorLinear
	// PredictorRW forces the random-walk predictor.
	PredictorRW
	// PredictorAuto selects the predictor with the lowest post-decode MSE per segment.
	PredictorAuto
)

// String returns the human-readable name of the predictor mode.
func (m PredictorMode) String() string {
	switch m {
	case PredictorMean:
		return "mean"
	case PredictorLinear:
		return "linear"
	case PredictorRW:
		return "rw"
	case PredictorAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Mode selects the segmentation strategy.
type Mode uint8

const (
	// Fixed splits the series into consecutive windows of a fixed length.
	Fixed Mode = iota
	// Adaptive grows each window until further growth would exceed the configured
	// MSE threshold.
	Adaptive
)

// String returns the human-readable name of the segmentation mode.
func (m Mode) String() string {
	switch m {
	case Fixed:
		return "fixed"
	case Adaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// Segment is one output window of the segmenter: its index range and its fit.
type Segment struct {
	Start int
	End   int
	Fit   segment.Fit
}

// Params bundles the knobs the segmenter needs from the caller's configuration.
type Params struct {
	MinLen        uint32
	MaxLen        uint32
	MSEThreshold  float64
	PredictorMode PredictorMode
	CQ            float64
	QMin          float64
}

func fitWindow(x []float64, mode PredictorMode, cQ, qMin float64) segment.Fit {
	switch mode {
	case PredictorMean:
		return segment.FitWith(x, predictor.Mean, cQ, qMin)
	case PredictorLinear:
		return segment.FitWith(x, predictor.Linear, cQ, qMin)
	case PredictorRW:
		return segment.FitWith(x, predictor.RW, cQ, qMin)
	default:
		return segment.SelectBest(x, cQ, qMin)
	}
}

// isConstant reports whether every sample equals x[0]. Only called on non-empty x;
// degenerateWhole handles the empty case before reaching here.
func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}

	return true
}

// degenerateWhole handles the whole-series edge cases the segmenter forces to the mean
// predictor regardless of the configured mode: an empty series, a single-point series,
// and a series whose samples are all identical (residuals are zero for every predictor
// there, so forcing mean keeps the choice reproducible instead of depending on the
// auto-selector's linear > mean > rw tie-break). Callers are expected to reject empty
// series before reaching the segmenter (see TimeSeries.Validate); this is a defensive
// backstop, not the primary guard.
func degenerateWhole(x []float64, cQ, qMin float64) ([]Segment, bool) {
	if len(x) == 0 {
		return []Segment{}, true
	}

	if len(x) == 1 || isConstant(x) {
		fit := segment.FitWith(x, predictor.Mean, cQ, qMin)

		return []Segment{{Start: 0, End: len(x), Fit: fit}}, true
	}

	return nil, false
}

// Fixed splits x into consecutive windows of length p.MaxLen clamped to [p.MinLen,
// p.MaxLen]; the last window may be shorter.
func FixedSegment(x []float64, p Params) []Segment {
	if segs, ok := degenerateWhole(x, p.CQ, p.QMin); ok {
		return segs
	}

	l := int(p.MaxLen)
	if l < int(p.MinLen) {
		l = int(p.MinLen)
	}

	n := len(x)
	segments := make([]Segment, 0, (n+l-1)/l)

	for s := 0; s < n; s += l {
		e := s + l
		if e > n {
			e = n
		}

		fit := fitWindow(x[s:e], p.PredictorMode, p.CQ, p.QMin)
		segments = append(segments, Segment{Start: s, End: e, Fit: fit})
	}

	return segments
}

// AdaptiveSegment grows each candidate window one sample at a time while its
// post-decode MSE stays at or below p.MSEThreshold, freezing at the last length that
// satisfied the threshold (or at p.MinLen if none did). A trailing remainder shorter
// than p.MinLen is emitted as its own final segment.
func AdaptiveSegment(x []float64, p Params) []Segment {
	if segs, ok := degenerateWhole(x, p.CQ, p.QMin); ok {
		return segs
	}

	n := len(x)
	minLen := int(p.MinLen)
	maxLen := int(p.MaxLen)

	var segments []Segment

	for s := 0; s < n; {
		remaining := n - s
		if remaining < minLen {
			fit := fitWindow(x[s:n], p.PredictorMode, p.CQ, p.QMin)
			segments = append(segments, Segment{Start: s, End: n, Fit: fit})

			break
		}

		l := minLen
		fit := fitWindow(x[s:s+l], p.PredictorMode, p.CQ, p.QMin)

		lastGoodLen := 0
		if fit.PostMSE <= p.MSEThreshold {
			lastGoodLen = l
		}

		for fit.PostMSE <= p.MSEThreshold && l < maxLen && s+l+1 <= n {
			l++
			fit = fitWindow(x[s:s+l], p.PredictorMode, p.CQ, p.QMin)
			if fit.PostMSE <= p.MSEThreshold {
				lastGoodLen = l
			}
		}

		finalLen := lastGoodLen
		if finalLen == 0 {
			finalLen = minLen
		}

		if finalLen != l {
			fit = fitWindow(x[s:s+finalLen], p.PredictorMode, p.CQ, p.QMin)
		}

		segments = append(segments, Segment{Start: s, End: s + finalLen, Fit: fit})
		s += finalLen
	}

	return segments
}
