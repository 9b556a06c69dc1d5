// Package rierr defines the sentinel error kinds the indexed engine can
// surface, in the style of the teacher's routing.ErrNoRoute /
// routing.ErrPointTooFar — checked with errors.Is at call sites, never
// inspected by string.
package rierr

import "errors"

var (
	// ErrInvalidHeader covers framing truncation, wrong magic, out-of-range
	// internal indices, and bad string offsets in the chunk codec.
	ErrInvalidHeader = errors.New("roadindex: invalid chunk header")

	// ErrUnsupportedVersion covers unknown container/payload versions and
	// unknown compression codepoints.
	ErrUnsupportedVersion = errors.New("roadindex: unsupported chunk version or compression")

	// ErrDecompressionFailed covers a decompressor reporting zero bytes or
	// disagreeing with the declared uncompressed size.
	ErrDecompressionFailed = errors.New("roadindex: chunk decompression failed")

	// ErrFetchFailed covers a transport or status error from the external
	// fetcher.
	ErrFetchFailed = errors.New("roadindex: chunk fetch failed")

	// ErrIOFailed covers a filesystem error from the chunk cache.
	ErrIOFailed = errors.New("roadindex: cache I/O failed")
)
