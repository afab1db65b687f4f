// Package compress implements threshold-gated payload compression for the
// inline client data script.
//
// Compression is opportunistic: payloads below the threshold, and payloads
// the compaction pass fails to shrink, are reported as nil and emitted
// uncompressed by the caller. Note that Decompress does not invert the
// run substitution pass; see the Decompress documentation for the
// round-trip caveat.
package compress
