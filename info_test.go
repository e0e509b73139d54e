package lasagna

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/lasagna-v2/classify"
)

func buildSampleContainer(t *testing.T) []byte {
	t.Helper()

	cfg, err := NewConfig(WithMinSegmentLength(10), WithMaxSegmentLength(10))
	require.NoError(t, err)

	x := make([]float64, 40)
	for i := range x {
		switch {
		case i < 10:
			x[i] = 3.0
		case i < 20:
			x[i] = float64(i) * 2.0
		case i < 30:
			x[i] = 3.0
		default:
			if i%2 == 0 {
				x[i] = 100.0
			} else {
				x[i] = -100.0
			}
		}
	}

	ts := TimeSeries{Values: x, Dt: 1.0, T0: "2024-01-01T00:00:00Z", Unit: "amps"}

	data, err := Encode(ts, cfg)
	require.NoError(t, err)

	return data
}

func TestReadInfo_CountsAndContext(t *testing.T) {
	data := buildSampleContainer(t)

	info, err := ReadInfo(data)
	require.NoError(t, err)

	require.Equal(t, 40, info.NPoints)
	require.Equal(t, 4, info.NSegments)
	require.Equal(t, 1.0, info.Dt)
	require.Equal(t, "amps", info.Unit)
	require.Len(t, info.Segments, 4)
	require.Greater(t, info.CompressionRatio, 0.0)
}

func TestExportTags_OneRowPerSegment(t *testing.T) {
	data := buildSampleContainer(t)

	rows, err := ExportTags(data)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	for i, r := range rows {
		require.Equal(t, i, r.SegmentID)
		require.Equal(t, 10, r.Len)
	}

	require.Equal(t, classify.Flat, rows[0].Pattern)
}

func TestExportProfile_AggregatesByPattern(t *testing.T) {
	data := buildSampleContainer(t)

	profile, err := ExportProfile(data)
	require.NoError(t, err)

	require.NotEmpty(t, profile.ByPattern)

	var totalFraction float64
	for _, stats := range profile.ByPattern {
		totalFraction += stats.PointFraction
		require.GreaterOrEqual(t, stats.MotifCount, 1)
	}
	require.InDelta(t, 1.0, totalFraction, 1e-9)
}
