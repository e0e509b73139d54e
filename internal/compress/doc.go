// Package compress provides compression and decompression codecs for at-rest storage
// of already-encoded container bytes.
//
// # Overview
//
// Containers are encoded once by lasagna.Encode using the fixed wire format; this
// package offers an optional second layer of compression applied to the finished bytes
// before they hit disk or the network. The two layers are independent: a corrupt or
// unsupported outer compression layer never weakens the inner container's own bounds
// checking.
//
// Supported algorithms:
//   - None: no compression, fastest, largest
//   - Zstd: best compression ratio, moderate speed (github.com/klauspost/compress/zstd)
//   - S2: balanced compression and speed, a Snappy-compatible format (github.com/klauspost/compress/s2)
//   - LZ4: very fast decompression, moderate compression ratio (github.com/pierrec/lz4/v4)
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Memory management
//
// All codecs use buffer pooling where the underlying library supports warm reuse
// (Zstd encoders/decoders, the LZ4 block compressor). S2 is stateless and allocates
// per call. NoOp never allocates: it returns the input slice unchanged.
//
// # Thread safety
//
// All codec implementations are safe for concurrent use.
package compress
