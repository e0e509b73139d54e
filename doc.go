// Package lasagna implements the lossy time-series codec and its `.lsg2` binary
// container format: segmentation, parametric prediction, residual quantization,
// entropy coding, and qualitative segment classification.
//
// # Overview
//
// Encode takes a TimeSeries and a Config and produces self-describing `.lsg2` bytes.
// Decode reverses the process, reconstructing the (lossily) dequantized series. Between
// the two, the codec splits the series into segments (package segmenter), fits each one
// with a parametric predictor (package predictor, package segment), quantizes the
// residuals, tags each segment with a qualitative pattern and salience level (package
// classify), and serializes everything into the wire format (package container).
//
// ReadInfo, ExportTags, and ExportProfile summarize an encoded container for dashboards
// and quick triage. All three parse the whole container, residual blocks included, with
// the same checks as Decode; ExportTags and ExportProfile also reconstruct each
// segment's samples to compute its energy.
//
// The storage package wraps already-encoded container bytes with an optional outer
// compression layer for cold storage or transport; it is independent of this package
// and never weakens the container's own hardened decode path.
//
// # Error handling
//
// Every failure wraps a sentinel from the errs package via %w, so callers can test
// with errors.Is. The codec never panics on malformed input; Decode and its siblings
// fail closed.
package lasagna
