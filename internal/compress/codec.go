package compress

// Compressor compresses an opaque byte slice.
//
// Memory management:
//   - The returned slice is newly allocated and owned by the caller.
//   - The input slice is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a byte slice produced by the matching Compressor.
//
// Decompress returns an error if data is corrupted or was produced by a different
// algorithm than the one the Decompressor implements.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines Compressor and Decompressor.
type Codec interface {
	Compressor
	Decompressor
}
