// Package errs defines the closed set of sentinel errors returned across the module.
//
// Every function that can fail wraps one of these sentinels with call-site context via
// fmt.Errorf("...: %w", errs.ErrXxx), so callers can test with errors.Is against the
// sentinel while still getting a human-readable message. There is no internal logging:
// this is a library and the caller decides what, if anything, gets logged.
package errs

import "errors"

// Input validation errors, returned by the encode path.
var (
	// ErrInvalidInput is returned when a TimeSeries fails validation: empty samples,
	// a non-positive sample interval, or a non-finite (NaN/Inf) value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig is returned when a Config fails validation, e.g. a non-positive
	// MSE threshold, q_min or c_q, a minimum segment length of zero, or a maximum
	// segment length below the minimum.
	ErrInvalidConfig = errors.New("invalid config")
)

// Container decode errors, returned by the decode path. Every decode stage
// bounds-checks the remaining buffer before reading and before allocating, so these
// are the only errors a hostile or truncated input can ever produce.
var (
	// ErrBadMagic is returned when the leading 4 bytes are not "LSG2".
	ErrBadMagic = errors.New("bad magic number")

	// ErrUnsupportedVersion is returned when the header version field is not one
	// this decoder understands.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrTruncatedHeader is returned when fewer bytes are available than the
	// fixed-size header requires.
	ErrTruncatedHeader = errors.New("truncated header")

	// ErrMalformedContext is returned when the context section is not valid JSON
	// or its declared length exceeds the remaining buffer.
	ErrMalformedContext = errors.New("malformed context")

	// ErrTruncatedSegmentTable is returned when the declared segment count implies
	// a table longer than the remaining buffer.
	ErrTruncatedSegmentTable = errors.New("truncated segment table")

	// ErrMalformedResidualBlock is returned when a residual block cannot be decoded
	// with its declared coding (raw int32 or zigzag varint), including truncated
	// varint continuation sequences.
	ErrMalformedResidualBlock = errors.New("malformed residual block")

	// ErrCoverageMismatch is returned when the segment table's spans do not
	// partition [0, n_points) exactly: a gap, an overlap, or a span past the end.
	ErrCoverageMismatch = errors.New("segment coverage mismatch")

	// ErrInconsistentCounts is returned when n_points, n_segments, or a segment's
	// declared residual count disagree with each other or with the buffer layout.
	ErrInconsistentCounts = errors.New("inconsistent counts")
)

// Storage (at-rest wrapper) errors. These are local to the storage package and are
// never confused with the container decode errors above: a corrupt or unrecognized
// outer compression layer never implies anything about the inner container bytes.
var (
	// ErrUnsupportedAlgorithm is returned when a Pack/Unpack algorithm byte is not
	// one of the known storage.Algorithm values.
	ErrUnsupportedAlgorithm = errors.New("unsupported storage algorithm")

	// ErrBadEnvelopeMagic is returned when the leading 4 bytes of a wrapped blob
	// are not "LSGW", meaning it was never produced by Pack.
	ErrBadEnvelopeMagic = errors.New("bad storage envelope magic")

	// ErrTruncatedEnvelope is returned when fewer bytes are available than the
	// storage envelope's fixed-size header requires.
	ErrTruncatedEnvelope = errors.New("truncated storage envelope")

	// ErrFingerprintMismatch is returned when the decompressed payload's xxhash64
	// fingerprint does not match the one recorded in the envelope.
	ErrFingerprintMismatch = errors.New("storage fingerprint mismatch")
)
