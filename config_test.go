package lasagna

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/lasagna-v2/classify"
	"github.com/gcomneno/lasagna-v2/errs"
	"github.com/gcomneno/lasagna-v2/segmenter"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.validate())
}

func TestNewConfig_RejectsNonPositiveMSEThreshold(t *testing.T) {
	_, err := NewConfig(WithMSEThreshold(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewConfig(WithMSEThreshold(-0.01))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestNewConfig_AppliesOptions(t *testing.T) {
	thresholds := classify.Thresholds{EFlat: 0.5, SFlat: 0.5, STrend: 0.5, COsc: 0.5, ELow: 0.5, EHigh: 2.0}

	cfg, err := NewConfig(
		WithPredictor(segmenter.PredictorLinear),
		WithCQ(0.5),
		WithClassifierThresholds(thresholds),
	)
	require.NoError(t, err)
	require.Equal(t, segmenter.PredictorLinear, cfg.predictorMode)
	require.Equal(t, 0.5, cfg.cQ)
	require.Equal(t, thresholds, cfg.thresholds)
}

func TestEncode_ForcedPredictor(t *testing.T) {
	cfg, err := NewConfig(
		WithPredictor(segmenter.PredictorMean),
		WithMinSegmentLength(10),
		WithMaxSegmentLength(10),
	)
	require.NoError(t, err)

	ts := TimeSeries{Values: rampSeries(20), Dt: 1.0}

	data, err := Encode(ts, cfg)
	require.NoError(t, err)

	rows, err := ExportTags(data)
	require.NoError(t, err)
	for _, r := range rows {
		require.Equal(t, 0, int(r.Predictor))
	}
}
