// Package container implements the binary `.lsg2` wire format: a fixed header, a
// small JSON context block, a fixed-width segment table, and a residual section
// coded either as raw little-endian int32 or as ZigZag+varint integers.
//
// Decode is hardened against adversarial input: every stage bounds-checks the
// declared sizes against the remaining buffer before reading, and before allocating
// anything sized by an attacker-controlled count.
package container

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/gcomneno/lasagna-v2/classify"
	"github.com/gcomneno/lasagna-v2/endian"
	"github.com/gcomneno/lasagna-v2/errs"
	"github.com/gcomneno/lasagna-v2/internal/pool"
	"github.com/gcomneno/lasagna-v2/predictor"
	"github.com/gcomneno/lasagna-v2/varint"
)

var le = endian.GetLittleEndianEngine()

var magic = [4]byte{'L', 'S', 'G', '2'}

const (
	supportedVersion = uint16(1)

	headerSize       = 32
	segmentEntrySize = 64

	flagResidualVarint = uint16(1) << 0

	// maxContextLen bounds the JSON context block, per the wire format.
	maxContextLen = 1 << 20
)

// ResidualCoding selects how a segment's residuals are entropy-coded.
type ResidualCoding uint8

const (
	// CodingRaw stores each residual as a little-endian int32.
	CodingRaw ResidualCoding = iota
	// CodingVarint stores each residual as a ZigZag+varint integer.
	CodingVarint
)

// Context is the small, caller-opaque metadata block every container carries. The
// codec never interprets Dt, T0, or Unit; they round-trip verbatim.
type Context struct {
	Dt   float64
	T0   any
	Unit string
}

// contextWire is the exact JSON shape on the wire; Context.T0 is typed any because
// the spec allows either a string or a number there.
type contextWire struct {
	Dt   float64 `json:"dt"`
	T0   any     `json:"t0"`
	Unit string  `json:"unit"`
}

// Segment is one entry of the segment table plus its residual block.
type Segment struct {
	StartIdx      uint64
	EndIdx        uint64
	PredictorType predictor.Type
	Mean          float64
	Slope         float64
	Intercept     float64
	Q             float64
	SeedValue     float64
	Pattern       classify.Pattern
	Salience      uint8
	Residuals     []int64
}

// Len returns the segment's sample count.
func (s Segment) Len() int {
	return int(s.EndIdx - s.StartIdx)
}

// Container is the fully decoded (or not-yet-encoded) in-memory form of a `.lsg2`
// file.
type Container struct {
	NPoints  uint64
	Context  Context
	Segments []Segment
	Coding   ResidualCoding
}

// Encode serializes c into the wire format described in the package doc.
func Encode(c Container) ([]byte, error) {
	contextJSON, err := json.Marshal(contextWire{Dt: c.Context.Dt, T0: c.Context.T0, Unit: c.Context.Unit})
	if err != nil {
		return nil, fmt.Errorf("container: encode context: %w", err)
	}

	if len(contextJSON) > maxContextLen {
		return nil, fmt.Errorf("container: context too large: %d bytes", len(contextJSON))
	}

	var flags uint16
	if c.Coding == CodingVarint {
		flags |= flagResidualVarint
	}

	bb := pool.GetContainerBuffer()
	defer pool.PutContainerBuffer(bb)
	bb.Grow(headerSize + len(contextJSON) + len(c.Segments)*segmentEntrySize)

	buf := bb.Bytes()

	buf = append(buf, magic[:]...)
	buf = le.AppendUint16(buf, supportedVersion)
	buf = le.AppendUint16(buf, flags)
	buf = le.AppendUint64(buf, c.NPoints)
	buf = le.AppendUint32(buf, uint32(len(c.Segments)))
	buf = le.AppendUint32(buf, uint32(len(contextJSON)))
	buf = append(buf, make([]byte, 8)...) // reserved

	buf = append(buf, contextJSON...)

	for _, seg := range c.Segments {
		buf = appendSegmentEntry(buf, seg)
	}

	buf = append(buf, byte(c.Coding))
	for _, seg := range c.Segments {
		block := encodeResidualBlock(seg.Residuals, c.Coding)
		buf = le.AppendUint32(buf, uint32(len(block)))
		buf = append(buf, block...)
	}

	out := make([]byte, len(buf))
	copy(out, buf)

	return out, nil
}

func appendSegmentEntry(buf []byte, seg Segment) []byte {
	buf = le.AppendUint64(buf, seg.StartIdx)
	buf = le.AppendUint64(buf, seg.EndIdx)
	buf = append(buf, byte(seg.PredictorType))
	buf = append(buf, 0, 0, 0) // reserved
	buf = le.AppendUint64(buf, math.Float64bits(seg.Mean))
	buf = le.AppendUint64(buf, math.Float64bits(seg.Slope))
	buf = le.AppendUint64(buf, math.Float64bits(seg.Intercept))
	buf = le.AppendUint64(buf, math.Float64bits(seg.Q))
	buf = le.AppendUint64(buf, math.Float64bits(seg.SeedValue))
	buf = append(buf, byte(seg.Pattern))
	buf = append(buf, seg.Salience)
	buf = append(buf, 0, 0) // reserved2

	return buf
}

func encodeResidualBlock(residuals []int64, coding ResidualCoding) []byte {
	switch coding {
	case CodingVarint:
		return varint.EncodeAllZigZag(residuals)
	default:
		block := make([]byte, len(residuals)*4)
		for i, r := range residuals {
			le.PutUint32(block[i*4:], uint32(int32(r)))
		}

		return block
	}
}

// decoder carries the input buffer and the offset of the next unread byte. Every
// read* method bounds-checks before advancing the offset.
type decoder struct {
	data   []byte
	offset int
}

// Decode parses data into a Container, validating every declared size against the
// remaining buffer before reading or allocating. It never panics on adversarial
// input.
func Decode(data []byte) (Container, error) {
	d := &decoder{data: data}

	version, flags, nPoints, nSegments, contextLen, err := d.parseHeader()
	if err != nil {
		return Container{}, err
	}

	if version != supportedVersion {
		return Container{}, fmt.Errorf("container: %w: %d", errs.ErrUnsupportedVersion, version)
	}

	if flags&^flagResidualVarint != 0 {
		return Container{}, fmt.Errorf("container: %w: reserved flag bits set", errs.ErrInconsistentCounts)
	}

	coding := CodingRaw
	if flags&flagResidualVarint != 0 {
		coding = CodingVarint
	}

	// A segment table that cannot fit in what follows the header is rejected before the
	// context is parsed, so a hostile segment count is reported as such.
	if tableSize := uint64(nSegments) * uint64(segmentEntrySize); tableSize > uint64(d.remaining()) {
		return Container{}, fmt.Errorf("container: %w: declared %d segments need %d bytes, have %d", errs.ErrTruncatedSegmentTable, nSegments, tableSize, d.remaining())
	}

	ctx, err := d.parseContext(contextLen)
	if err != nil {
		return Container{}, err
	}

	segments, err := d.parseSegmentTable(nSegments, nPoints)
	if err != nil {
		return Container{}, err
	}

	if err := d.parseResidualSection(segments, coding); err != nil {
		return Container{}, err
	}

	return Container{NPoints: nPoints, Context: ctx, Segments: segments, Coding: coding}, nil
}

func (d *decoder) remaining() int {
	return len(d.data) - d.offset
}

func (d *decoder) parseHeader() (version, flags uint16, nPoints uint64, nSegments, contextLen uint32, err error) {
	if d.remaining() < headerSize {
		return 0, 0, 0, 0, 0, fmt.Errorf("container: %w: got %d bytes, need %d", errs.ErrTruncatedHeader, d.remaining(), headerSize)
	}

	h := d.data[d.offset : d.offset+headerSize]
	d.offset += headerSize

	if [4]byte(h[0:4]) != magic {
		return 0, 0, 0, 0, 0, fmt.Errorf("container: %w", errs.ErrBadMagic)
	}

	version = le.Uint16(h[4:6])
	flags = le.Uint16(h[6:8])
	nPoints = le.Uint64(h[8:16])
	nSegments = le.Uint32(h[16:20])
	contextLen = le.Uint32(h[20:24])

	for _, b := range h[24:32] {
		if b != 0 {
			return 0, 0, 0, 0, 0, fmt.Errorf("container: %w: reserved header bytes must be zero", errs.ErrInconsistentCounts)
		}
	}

	if contextLen > maxContextLen {
		return 0, 0, 0, 0, 0, fmt.Errorf("container: %w: context_len %d exceeds limit", errs.ErrMalformedContext, contextLen)
	}

	return version, flags, nPoints, nSegments, contextLen, nil
}

func (d *decoder) parseContext(contextLen uint32) (Context, error) {
	if uint32(d.remaining()) < contextLen {
		return Context{}, fmt.Errorf("container: %w: declared %d bytes, have %d", errs.ErrMalformedContext, contextLen, d.remaining())
	}

	raw := d.data[d.offset : d.offset+int(contextLen)]
	d.offset += int(contextLen)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var wire contextWire
	if err := dec.Decode(&wire); err != nil {
		return Context{}, fmt.Errorf("container: %w: %v", errs.ErrMalformedContext, err)
	}

	if wire.Dt <= 0 {
		return Context{}, fmt.Errorf("container: %w: dt must be positive", errs.ErrMalformedContext)
	}

	return Context{Dt: wire.Dt, T0: wire.T0, Unit: wire.Unit}, nil
}

func (d *decoder) parseSegmentTable(nSegments uint32, nPoints uint64) ([]Segment, error) {
	tableSize := uint64(nSegments) * uint64(segmentEntrySize)
	if tableSize > uint64(d.remaining()) {
		return nil, fmt.Errorf("container: %w: declared %d segments need %d bytes, have %d", errs.ErrTruncatedSegmentTable, nSegments, tableSize, d.remaining())
	}

	segments := make([]Segment, nSegments)

	var prevEnd uint64
	for i := range segments {
		entry := d.data[d.offset : d.offset+segmentEntrySize]
		d.offset += segmentEntrySize

		predType := predictor.Type(entry[16])
		if predType != predictor.Mean && predType != predictor.Linear && predType != predictor.RW {
			return nil, fmt.Errorf("container: %w: invalid predictor type %d", errs.ErrInconsistentCounts, predType)
		}

		if entry[17] != 0 || entry[18] != 0 || entry[19] != 0 || entry[62] != 0 || entry[63] != 0 {
			return nil, fmt.Errorf("container: %w: segment %d reserved bytes must be zero", errs.ErrInconsistentCounts, i)
		}

		seg := Segment{
			StartIdx:      le.Uint64(entry[0:8]),
			EndIdx:        le.Uint64(entry[8:16]),
			PredictorType: predType,
			Mean:          math.Float64frombits(le.Uint64(entry[20:28])),
			Slope:         math.Float64frombits(le.Uint64(entry[28:36])),
			Intercept:     math.Float64frombits(le.Uint64(entry[36:44])),
			Q:             math.Float64frombits(le.Uint64(entry[44:52])),
			SeedValue:     math.Float64frombits(le.Uint64(entry[52:60])),
			Pattern:       classify.Pattern(entry[60]),
			Salience:      entry[61],
		}

		if seg.EndIdx <= seg.StartIdx || seg.EndIdx > nPoints {
			return nil, fmt.Errorf("container: %w: segment %d range [%d,%d)", errs.ErrCoverageMismatch, i, seg.StartIdx, seg.EndIdx)
		}

		wantStart := uint64(0)
		if i > 0 {
			wantStart = prevEnd
		}
		if seg.StartIdx != wantStart {
			return nil, fmt.Errorf("container: %w: segment %d starts at %d, want %d", errs.ErrCoverageMismatch, i, seg.StartIdx, wantStart)
		}

		if !(seg.Q > 0 && !math.IsNaN(seg.Q) && !math.IsInf(seg.Q, 0)) {
			return nil, fmt.Errorf("container: %w: segment %d has non-positive or non-finite Q", errs.ErrInconsistentCounts, i)
		}

		prevEnd = seg.EndIdx
		segments[i] = seg
	}

	if nSegments > 0 && prevEnd != nPoints {
		return nil, fmt.Errorf("container: %w: last segment ends at %d, n_points is %d", errs.ErrCoverageMismatch, prevEnd, nPoints)
	}

	if nSegments == 0 && nPoints != 0 {
		return nil, fmt.Errorf("container: %w: no segments but n_points is %d", errs.ErrCoverageMismatch, nPoints)
	}

	return segments, nil
}

func (d *decoder) parseResidualSection(segments []Segment, coding ResidualCoding) error {
	if d.remaining() < 1 {
		return fmt.Errorf("container: %w: missing residual coding byte", errs.ErrMalformedResidualBlock)
	}

	declaredCoding := ResidualCoding(d.data[d.offset])
	d.offset++

	if declaredCoding != coding {
		return fmt.Errorf("container: %w: residual coding byte disagrees with header flags", errs.ErrMalformedResidualBlock)
	}

	for i := range segments {
		if d.remaining() < 4 {
			return fmt.Errorf("container: %w: segment %d missing block_len", errs.ErrMalformedResidualBlock, i)
		}

		blockLen := le.Uint32(d.data[d.offset : d.offset+4])
		d.offset += 4

		if uint64(blockLen) > uint64(d.remaining()) {
			return fmt.Errorf("container: %w: segment %d block_len %d exceeds remaining buffer", errs.ErrMalformedResidualBlock, i, blockLen)
		}

		block := d.data[d.offset : d.offset+int(blockLen)]
		d.offset += int(blockLen)

		// Every residual takes at least one byte in either coding, so a segment longer
		// than its block is rejected before anything is allocated for it.
		span := segments[i].EndIdx - segments[i].StartIdx
		if span > uint64(blockLen) {
			return fmt.Errorf("container: %w: segment %d declares %d values in a %d-byte block", errs.ErrMalformedResidualBlock, i, span, blockLen)
		}
		l := int(span)

		var residuals []int64
		var err error
		switch coding {
		case CodingVarint:
			var consumed int
			residuals, consumed, err = varint.DecodeAllZigZag(block, l)
			if err == nil && consumed != len(block) {
				err = fmt.Errorf("container: %w: segment %d varint block has %d trailing bytes after %d values", errs.ErrMalformedResidualBlock, i, len(block)-consumed, l)
			}
		default:
			residuals, err = decodeRawInt32Block(block, l)
		}
		if err != nil {
			return err
		}

		segments[i].Residuals = residuals
	}

	return nil
}

func decodeRawInt32Block(block []byte, l int) ([]int64, error) {
	if len(block) != l*4 {
		return nil, fmt.Errorf("container: %w: raw block has %d bytes, want %d", errs.ErrMalformedResidualBlock, len(block), l*4)
	}

	out := make([]int64, l)
	for i := range out {
		out[i] = int64(int32(le.Uint32(block[i*4:])))
	}

	return out, nil
}
