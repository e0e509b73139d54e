// Package storage wraps already-encoded container bytes with an optional outer
// compression layer for cold storage or transport.
//
// Pack and Unpack operate strictly on top of lasagna.Encode's output: they never
// inspect or rely on the container's own wire format, and the container's hardened
// decode path (errs.ErrBadMagic, errs.ErrTruncatedHeader, and friends) is entirely
// unaffected by whether the bytes arrived wrapped or not.
package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/gcomneno/lasagna-v2/errs"
	"github.com/gcomneno/lasagna-v2/internal/compress"
	"github.com/gcomneno/lasagna-v2/internal/hash"
)

// Algorithm identifies the outer compression applied by Pack.
type Algorithm uint8

const (
	// AlgorithmNone applies no compression; Pack still adds the envelope and
	// fingerprint, so Unpack validation is uniform across all algorithms.
	AlgorithmNone Algorithm = iota
	// AlgorithmZstd compresses with Zstandard (best ratio, moderate speed).
	AlgorithmZstd
	// AlgorithmS2 compresses with S2, a Snappy-compatible format (balanced).
	AlgorithmS2
	// AlgorithmLZ4 compresses with LZ4 (fastest decompression).
	AlgorithmLZ4
)

// String returns the human-readable name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "None"
	case AlgorithmZstd:
		return "Zstd"
	case AlgorithmS2:
		return "S2"
	case AlgorithmLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func codecFor(algo Algorithm) (compress.Codec, error) {
	switch algo {
	case AlgorithmNone:
		return compress.NewNoOpCompressor(), nil
	case AlgorithmZstd:
		return compress.NewZstdCompressor(), nil
	case AlgorithmS2:
		return compress.NewS2Compressor(), nil
	case AlgorithmLZ4:
		return compress.NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("storage: %w: %d", errs.ErrUnsupportedAlgorithm, algo)
	}
}

// envelopeMagic identifies a storage envelope. Distinct from the container's own
// magic so a misrouted wrapped/unwrapped byte slice fails fast and unambiguously.
var envelopeMagic = [4]byte{'L', 'S', 'G', 'W'}

// Envelope layout, all multi-byte fields little-endian:
//
//	offset 0  magic        [4]byte   "LSGW"
//	offset 4  algorithm    uint8
//	offset 5  reserved     [3]byte   written as zero by Pack; not checked by Unpack
//	offset 8  originalLen  uint64    length of the uncompressed container
//	offset 16 fingerprint  uint64    xxhash64 of the uncompressed container
//	offset 24 payload      []byte    compressed container bytes
const envelopeHeaderSize = 24

// Pack compresses containerBytes with algo and prefixes a fixed envelope carrying
// the algorithm, the uncompressed length, and a content fingerprint.
func Pack(containerBytes []byte, algo Algorithm) ([]byte, error) {
	codec, err := codecFor(algo)
	if err != nil {
		return nil, err
	}

	compressed, err := codec.Compress(containerBytes)
	if err != nil {
		return nil, fmt.Errorf("storage: compress: %w", err)
	}

	out := make([]byte, envelopeHeaderSize+len(compressed))
	copy(out[0:4], envelopeMagic[:])
	out[4] = byte(algo)
	binary.LittleEndian.PutUint64(out[8:16], uint64(len(containerBytes)))
	binary.LittleEndian.PutUint64(out[16:24], hash.Bytes(containerBytes))
	copy(out[envelopeHeaderSize:], compressed)

	return out, nil
}

// Unpack validates the envelope, decompresses the payload, and verifies the content
// fingerprint before returning. A truncated envelope, a bad magic, or an unknown
// algorithm is rejected before any decompression runs; a corrupted payload is rejected
// after decompression, when its length or fingerprint does not match the envelope.
// The decompressed size is not bounded by the recorded length beforehand.
func Unpack(wrapped []byte) ([]byte, error) {
	if len(wrapped) < envelopeHeaderSize {
		return nil, fmt.Errorf("storage: %w: got %d bytes, need %d", errs.ErrTruncatedEnvelope, len(wrapped), envelopeHeaderSize)
	}

	if [4]byte(wrapped[0:4]) != envelopeMagic {
		return nil, fmt.Errorf("storage: %w", errs.ErrBadEnvelopeMagic)
	}

	algo := Algorithm(wrapped[4])
	codec, err := codecFor(algo)
	if err != nil {
		return nil, err
	}

	originalLen := binary.LittleEndian.Uint64(wrapped[8:16])
	wantFingerprint := binary.LittleEndian.Uint64(wrapped[16:24])

	decompressed, err := codec.Decompress(wrapped[envelopeHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("storage: decompress: %w", err)
	}

	// The codecs return nil for an empty payload; an empty container comes back as an
	// empty, non-nil slice whatever the algorithm.
	if decompressed == nil {
		decompressed = []byte{}
	}

	if uint64(len(decompressed)) != originalLen {
		return nil, fmt.Errorf("storage: %w: declared %d bytes, got %d", errs.ErrFingerprintMismatch, originalLen, len(decompressed))
	}

	if hash.Bytes(decompressed) != wantFingerprint {
		return nil, fmt.Errorf("storage: %w", errs.ErrFingerprintMismatch)
	}

	return decompressed, nil
}
