package lasagna

import (
	"fmt"

	"github.com/gcomneno/lasagna-v2/classify"
	"github.com/gcomneno/lasagna-v2/container"
	"github.com/gcomneno/lasagna-v2/predictor"
	"github.com/gcomneno/lasagna-v2/segmenter"
)

// Encode segments ts, fits and classifies each segment, and serializes the result into
// `.lsg2` bytes. It fails with errs.ErrInvalidInput if ts carries a non-finite or
// non-positive Dt, or a non-finite sample.
func Encode(ts TimeSeries, cfg Config) ([]byte, error) {
	if err := ts.Validate(); err != nil {
		return nil, err
	}

	segParams := segmenter.Params{
		MinLen:        cfg.minLen,
		MaxLen:        cfg.maxLen,
		MSEThreshold:  cfg.mseThreshold,
		PredictorMode: cfg.predictorMode,
		CQ:            cfg.cQ,
		QMin:          cfg.qMin,
	}

	var rawSegments []segmenter.Segment
	switch cfg.segmentMode {
	case segmenter.Adaptive:
		rawSegments = segmenter.AdaptiveSegment(ts.Values, segParams)
	default:
		rawSegments = segmenter.FixedSegment(ts.Values, segParams)
	}

	segments := make([]container.Segment, 0, len(rawSegments))
	for _, rs := range rawSegments {
		window := ts.Values[rs.Start:rs.End]
		cls := classify.Classify(window, rs.Fit.Params, cfg.thresholds)

		segments = append(segments, container.Segment{
			StartIdx:      uint64(rs.Start),
			EndIdx:        uint64(rs.End),
			PredictorType: rs.Fit.Params.Type,
			Mean:          rs.Fit.Params.Mean,
			Slope:         rs.Fit.Params.Slope,
			Intercept:     rs.Fit.Params.Intercept,
			Q:             rs.Fit.Q,
			SeedValue:     rs.Fit.Params.SeedValue,
			Pattern:       cls.Pattern,
			Salience:      cls.Salience,
			Residuals:     rs.Fit.Residuals,
		})
	}

	c := container.Container{
		NPoints:  uint64(len(ts.Values)),
		Context:  container.Context{Dt: ts.Dt, T0: ts.T0, Unit: ts.Unit},
		Segments: segments,
		Coding:   cfg.coding,
	}

	data, err := container.Encode(c)
	if err != nil {
		return nil, fmt.Errorf("lasagna: %w", err)
	}

	return data, nil
}

// Decode parses `.lsg2` bytes and reconstructs the (lossily) dequantized series. It
// never panics; malformed input fails with one of the sentinels in the errs package.
func Decode(data []byte) (TimeSeries, error) {
	c, err := container.Decode(data)
	if err != nil {
		return TimeSeries{}, err
	}

	values := make([]float64, c.NPoints)
	for _, seg := range c.Segments {
		l := seg.Len()
		params := predictor.Params{
			Type:      seg.PredictorType,
			Mean:      seg.Mean,
			Slope:     seg.Slope,
			Intercept: seg.Intercept,
			SeedValue: seg.SeedValue,
		}

		predicted := predictor.Reconstruct(params, l)
		for i := 0; i < l; i++ {
			values[int(seg.StartIdx)+i] = predicted[i] + float64(seg.Residuals[i])*seg.Q
		}
	}

	return TimeSeries{
		Values: values,
		Dt:     c.Context.Dt,
		T0:     c.Context.T0,
		Unit:   c.Context.Unit,
	}, nil
}
