// Package varint implements ZigZag-mapped varint encoding of signed integers, used
// for the residual coding of a segment's quantized prediction errors.
//
// A signed integer z is mapped to a nonnegative u = (z << 1) ^ (z >> 63), then u is
// emitted as a sequence of 7-bit little-endian groups with the MSB set on every byte
// except the last. Decoding is the inverse and is hardened against truncated or
// over-length input: it never reads past the end of the supplied slice and never
// accepts more than the 10 bytes a 64-bit value can require.
package varint

import (
	"fmt"

	"github.com/gcomneno/lasagna-v2/errs"
)

// maxVarintLen is the largest number of bytes a 64-bit varint can occupy.
const maxVarintLen = 10

// ZigZagEncode maps a signed integer to a nonnegative one, preserving small magnitudes
// as small codes: 0, -1, 1, -2, 2, ... map to 0, 1, 2, 3, 4, ...
func ZigZagEncode(z int64) uint64 {
	return uint64(z<<1) ^ uint64(z>>63)
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// AppendVarint appends the varint encoding of u to buf and returns the extended slice.
func AppendVarint(buf []byte, u uint64) []byte {
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}

	return append(buf, byte(u))
}

// AppendZigZag appends the ZigZag+varint encoding of z to buf.
func AppendZigZag(buf []byte, z int64) []byte {
	return AppendVarint(buf, ZigZagEncode(z))
}

// ReadVarint decodes a single varint-encoded value from the start of data.
//
// It returns the decoded value and the number of bytes consumed. It fails with
// errs.ErrMalformedResidualBlock if data is exhausted before a terminating byte is
// found, or if the encoding would require more than 10 bytes (a malformed or hostile
// continuation sequence for a 64-bit value).
func ReadVarint(data []byte) (u uint64, n int, err error) {
	var shift uint

	for n < len(data) && n < maxVarintLen {
		b := data[n]
		n++

		if shift == 63 && b > 1 {
			return 0, 0, fmt.Errorf("varint: %w: overflow", errs.ErrMalformedResidualBlock)
		}

		u |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return u, n, nil
		}

		shift += 7
	}

	if n >= maxVarintLen {
		return 0, 0, fmt.Errorf("varint: %w: exceeds %d bytes", errs.ErrMalformedResidualBlock, maxVarintLen)
	}

	return 0, 0, fmt.Errorf("varint: %w: truncated", errs.ErrMalformedResidualBlock)
}

// ReadZigZag decodes a single ZigZag+varint value, returning the signed value and the
// number of bytes consumed.
func ReadZigZag(data []byte) (z int64, n int, err error) {
	u, n, err := ReadVarint(data)
	if err != nil {
		return 0, 0, err
	}

	return ZigZagDecode(u), n, nil
}

// DecodeAllZigZag decodes exactly count ZigZag+varint integers from data and returns
// the number of bytes consumed.
//
// It fails with errs.ErrMalformedResidualBlock if data is exhausted before count
// values have been read, or if any individual value is malformed. The caller is
// expected to reject a mismatch between the bytes consumed and its own block framing:
// a block whose count of integers differs from the declared segment length must be
// rejected, not silently truncated or ignored.
func DecodeAllZigZag(data []byte, count int) ([]int64, int, error) {
	out := make([]int64, count)
	offset := 0

	for i := range count {
		z, n, err := ReadZigZag(data[offset:])
		if err != nil {
			return nil, 0, err
		}

		out[i] = z
		offset += n
	}

	return out, offset, nil
}

// EncodeAllZigZag encodes values as a contiguous sequence of ZigZag+varint integers.
func EncodeAllZigZag(values []int64) []byte {
	buf := make([]byte, 0, len(values)*2)
	for _, v := range values {
		buf = AppendZigZag(buf, v)
	}

	return buf
}
