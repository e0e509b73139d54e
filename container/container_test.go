package container

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gcomneno/lasagna-v2/classify"
	"github.com/gcomneno/lasagna-v2/errs"
	"github.com/gcomneno/lasagna-v2/predictor"
)

func sampleContainer(coding ResidualCoding) Container {
	return Container{
		NPoints: 10,
		Context: Context{Dt: 1.0, T0: "2024-01-01T00:00:00Z", Unit: "celsius"},
		Coding:  coding,
		Segments: []Segment{
			{
				StartIdx:      0,
				EndIdx:        5,
				PredictorType: predictor.Mean,
				Mean:          3.0,
				Q:             0.5,
				Pattern:       classify.Flat,
				Salience:      0,
				Residuals:     []int64{0, 1, -1, 2, -2},
			},
			{
				StartIdx:      5,
				EndIdx:        10,
				PredictorType: predictor.Linear,
				Mean:          3.0,
				Slope:         1.5,
				Intercept:     0.2,
				Q:             0.3,
				Pattern:       classify.Trend,
				Salience:      1,
				Residuals:     []int64{0, 0, 1, -1, 0},
			},
		},
	}
}

func TestEncodeDecode_RoundTrip_Raw(t *testing.T) {
	c := sampleContainer(CodingRaw)

	data, err := Encode(c)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, c.NPoints, decoded.NPoints)
	require.Equal(t, c.Context.Dt, decoded.Context.Dt)
	require.Equal(t, c.Context.Unit, decoded.Context.Unit)
	require.Len(t, decoded.Segments, 2)
	for i := range c.Segments {
		require.Equal(t, c.Segments[i].Residuals, decoded.Segments[i].Residuals)
		require.Equal(t, c.Segments[i].PredictorType, decoded.Segments[i].PredictorType)
		require.Equal(t, c.Segments[i].Pattern, decoded.Segments[i].Pattern)
	}
}

func TestEncodeDecode_RoundTrip_Varint(t *testing.T) {
	c := sampleContainer(CodingVarint)

	data, err := Encode(c)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	for i := range c.Segments {
		require.Equal(t, c.Segments[i].Residuals, decoded.Segments[i].Residuals)
	}
}

func TestDecode_BadMagic(t *testing.T) {
	data, err := Encode(sampleContainer(CodingRaw))
	require.NoError(t, err)

	data[0] = 'X'

	_, err = Decode(data)
	require.ErrorIs(t, err, errs.ErrBadMagic)
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	data, err := Encode(sampleContainer(CodingRaw))
	require.NoError(t, err)

	binary.LittleEndian.PutUint16(data[4:6], 99)

	_, err = Decode(data)
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestDecode_TruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{'L', 'S', 'G', '2', 1, 0})
	require.ErrorIs(t, err, errs.ErrTruncatedHeader)
}

func TestDecode_HostileSegmentCount(t *testing.T) {
	// magic + version=1 + flags=0 + n_points=2^63 + n_segments=2^31 + context_len=0 + reserved(8)
	data := make([]byte, headerSize)
	copy(data[0:4], magic[:])
	binary.LittleEndian.PutUint16(data[4:6], 1)
	binary.LittleEndian.PutUint64(data[8:16], 1<<63)
	binary.LittleEndian.PutUint32(data[16:20], 1<<31)

	_, err := Decode(data)
	require.ErrorIs(t, err, errs.ErrTruncatedSegmentTable)
}

func TestDecode_VarintCorruption(t *testing.T) {
	c := sampleContainer(CodingVarint)
	data, err := Encode(c)
	require.NoError(t, err)

	// Flip the last byte of the payload to a continuation byte.
	data[len(data)-1] |= 0x80

	_, err = Decode(data)
	require.ErrorIs(t, err, errs.ErrMalformedResidualBlock)
}

func TestDecode_VarintBlockOverCount(t *testing.T) {
	c := sampleContainer(CodingVarint)
	data, err := Encode(c)
	require.NoError(t, err)

	// Locate the last segment's residual block and splice in one extra ZigZag+varint
	// value, growing block_len to match: the block now encodes L+1 integers for a
	// segment whose table entry still declares L, which must be rejected even though
	// every individual varint in the block is well-formed.
	contextLen := binary.LittleEndian.Uint32(data[20:24])
	offset := headerSize + int(contextLen) + len(c.Segments)*segmentEntrySize + 1 // +1 coding byte

	var lastBlockLenOffset, lastBlockStart, lastBlockLen int
	for range c.Segments {
		blockLenOffset := offset
		blockLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
		lastBlockLenOffset = blockLenOffset
		lastBlockStart = offset
		lastBlockLen = blockLen
		offset += blockLen
	}

	extra := []byte{0x02} // a valid single-byte ZigZag+varint value (decodes to 1)

	patched := append([]byte{}, data[:lastBlockStart+lastBlockLen]...)
	patched = append(patched, extra...)
	patched = append(patched, data[lastBlockStart+lastBlockLen:]...)

	binary.LittleEndian.PutUint32(patched[lastBlockLenOffset:lastBlockLenOffset+4], uint32(lastBlockLen+len(extra)))

	_, err = Decode(patched)
	require.ErrorIs(t, err, errs.ErrMalformedResidualBlock)
}

func TestDecode_CoverageGap(t *testing.T) {
	c := sampleContainer(CodingRaw)
	c.Segments[1].StartIdx = 6 // leaves a gap after segment 0 ends at 5

	data, err := Encode(c)
	require.NoError(t, err)

	_, err = Decode(data)
	require.ErrorIs(t, err, errs.ErrCoverageMismatch)
}

func TestDecode_MalformedContext_UnknownKey(t *testing.T) {
	data, err := Encode(sampleContainer(CodingRaw))
	require.NoError(t, err)

	// Splice in a context JSON that carries an extra key and patch context_len to
	// match: the decoder rejects unknown keys, so this must fail as a malformed
	// context.
	contextLen := binary.LittleEndian.Uint32(data[20:24])
	start := headerSize
	bad := append([]byte{}, data[:start]...)
	bad = append(bad, []byte(`{"dt":1,"t0":"x","unit":"c","extra":1}`)...)
	binary.LittleEndian.PutUint32(bad[20:24], uint32(len(bad)-start))
	bad = append(bad, data[start+int(contextLen):]...)

	_, err = Decode(bad)
	require.ErrorIs(t, err, errs.ErrMalformedContext)
}

func TestDecode_EmptyContainer(t *testing.T) {
	c := Container{NPoints: 0, Context: Context{Dt: 1.0, T0: 0, Unit: ""}, Coding: CodingRaw}

	data, err := Encode(c)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, uint64(0), decoded.NPoints)
	require.Empty(t, decoded.Segments)
}

func FuzzDecode(f *testing.F) {
	raw, err := Encode(sampleContainer(CodingRaw))
	require.NoError(f, err)
	f.Add(raw)

	vzz, err := Encode(sampleContainer(CodingVarint))
	require.NoError(f, err)
	f.Add(vzz)

	f.Add([]byte{})
	f.Add([]byte{'L', 'S', 'G', '2'})

	f.Fuzz(func(t *testing.T, data []byte) {
		require.NotPanics(t, func() {
			_, _ = Decode(data)
		})
	})
}
