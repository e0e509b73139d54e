package lasagna

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/lasagna-v2/container"
	"github.com/gcomneno/lasagna-v2/errs"
	"github.com/gcomneno/lasagna-v2/segmenter"
)

func rampSeries(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i) * 1.5
	}

	return x
}

func TestEncodeDecode_RoundTrip_FixedMode(t *testing.T) {
	cfg, err := NewConfig(
		WithSegmentMode(segmenter.Fixed),
		WithMinSegmentLength(8),
		WithMaxSegmentLength(32),
	)
	require.NoError(t, err)

	ts := TimeSeries{Values: rampSeries(100), Dt: 1.0, T0: "2024-01-01T00:00:00Z", Unit: "volts"}

	data, err := Encode(ts, cfg)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, decoded.Values, len(ts.Values))
	require.Equal(t, ts.Dt, decoded.Dt)
	require.Equal(t, ts.Unit, decoded.Unit)

	for i, v := range ts.Values {
		require.InDelta(t, v, decoded.Values[i], 1.0)
	}
}

func TestEncodeDecode_RoundTrip_AdaptiveMode(t *testing.T) {
	cfg, err := NewConfig(
		WithSegmentMode(segmenter.Adaptive),
		WithMinSegmentLength(4),
		WithMaxSegmentLength(64),
		WithMSEThreshold(0.05),
	)
	require.NoError(t, err)

	x := make([]float64, 150)
	for i := range x {
		switch {
		case i < 50:
			x[i] = 10.0
		case i < 100:
			x[i] = float64(i) * 0.2
		default:
			x[i] = 10.0 + float64((i*13)%5)
		}
	}

	ts := TimeSeries{Values: x, Dt: 0.5, T0: 0, Unit: "celsius"}

	data, err := Encode(ts, cfg)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.Values, len(x))
}

func TestEncodeDecode_ConstantSeries(t *testing.T) {
	cfg := DefaultConfig()
	ts := TimeSeries{Values: make([]float64, 40), Dt: 1.0, Unit: "unitless"}
	for i := range ts.Values {
		ts.Values[i] = 7.0
	}

	data, err := Encode(ts, cfg)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	for _, v := range decoded.Values {
		require.InDelta(t, 7.0, v, 1e-9)
	}
}

func TestEncodeDecode_SinglePoint(t *testing.T) {
	cfg := DefaultConfig()
	ts := TimeSeries{Values: []float64{42.0}, Dt: 1.0}

	data, err := Encode(ts, cfg)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.Values, 1)
	require.InDelta(t, 42.0, decoded.Values[0], 1e-9)
}

func TestEncode_RejectsEmptySeries(t *testing.T) {
	cfg := DefaultConfig()
	ts := TimeSeries{Values: nil, Dt: 1.0}

	_, err := Encode(ts, cfg)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestEncode_InvalidDt(t *testing.T) {
	cfg := DefaultConfig()
	ts := TimeSeries{Values: []float64{1, 2, 3}, Dt: 0}

	_, err := Encode(ts, cfg)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestEncode_NonFiniteSample(t *testing.T) {
	cfg := DefaultConfig()
	ts := TimeSeries{Values: []float64{1, math.NaN(), 3}, Dt: 1.0}

	_, err := Encode(ts, cfg)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestEncode_RawCoding(t *testing.T) {
	cfg, err := NewConfig(WithResidualCoding(container.CodingRaw))
	require.NoError(t, err)

	ts := TimeSeries{Values: rampSeries(64), Dt: 1.0}

	data, err := Encode(ts, cfg)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.Values, 64)
}

func TestNewConfig_RejectsInvalidBounds(t *testing.T) {
	_, err := NewConfig(WithMinSegmentLength(32), WithMaxSegmentLength(8))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestNewConfig_RejectsNonPositiveQMin(t *testing.T) {
	_, err := NewConfig(WithQMin(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestNewConfig_SameConfigSameInputIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	ts := TimeSeries{Values: rampSeries(50), Dt: 1.0}

	a, err := Encode(ts, cfg)
	require.NoError(t, err)
	b, err := Encode(ts, cfg)
	require.NoError(t, err)

	require.Equal(t, a, b)
}
