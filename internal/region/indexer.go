// Package region implements RegionIndexer: the core single-pass scanner that
// turns a half-open byte range of a ByteSource into a sorted sequence of
// field/record terminator offsets, per SPEC_FULL.md §4.2. It generalizes
// csvquery's Scanner.processChunk bitmap-driven loop (internal/indexer/scanner.go)
// from a fixed {quote, comma, newline} interest set to the full dialect
// surface — multi-byte delimiters and backslash escapes — while following
// the same byte-set-skip strategy vroom's index_region documents as
// strcspn(buf+pos, query) (original_source/src/index.h).
package region

import (
	"bytes"
	"math/bits"

	"github.com/colidx/colidx/internal/dialect"
	"github.com/colidx/colidx/internal/simd"
)

// Result carries what a single Index call observed, so ParallelIndexBuilder
// can stitch chunks together without re-deriving quote state from scratch.
type Result struct {
	LinesRead     int
	EndingInQuote bool
	Stopped       bool // true iff NMax was reached mid-range
}

// Index scans data[start:end) (data is the full backing ByteSource region),
// appending absolute offsets (fileOffset + position) of every field and
// record terminator to dst, honoring cfg and the incoming inQuote state.
//
// It never reads or writes outside [start, end): the caller is responsible
// for ensuring end <= len(data).
func Index(
	data []byte,
	start, end int,
	fileOffset int64,
	cfg dialect.Config,
	inQuote bool,
	linesAlreadyRead int,
	dst *[]int64,
) Result {
	chunk := data[start:end]
	n := len(chunk)

	trackBackslash := cfg.EscapeBackslash
	bm := simd.NewBitmaps(n, trackBackslash)
	simd.Scan(chunk, cfg.Quote, cfg.Delim[0], trackBackslash, bm)

	delim := cfg.Delim
	delimLen := len(delim)
	quote := cfg.Quote
	hasQuote := cfg.HasQuote()

	linesRead := 0
	pos := 0
	words := (n + 63) / 64

	for wordIdx := 0; wordIdx < words && pos < n; wordIdx++ {
		wordStart := wordIdx * 64
		combined := bm.Quote[wordIdx] | bm.DelimHead[wordIdx] | bm.Newline[wordIdx]
		if trackBackslash {
			combined |= bm.Backslash[wordIdx]
		}

		if combined == 0 {
			// No interest byte anywhere in this 64-byte word: jump the
			// cursor to the word boundary without a per-byte visit.
			next := wordStart + 64
			if next > n {
				next = n
			}
			if pos < next {
				pos = next
			}
			continue
		}

		for combined != 0 {
			tz := bits.TrailingZeros64(combined)
			bitMask := uint64(1) << uint(tz)
			combined &^= bitMask

			bytePos := wordStart + tz
			if bytePos < pos || bytePos >= n {
				continue
			}
			c := chunk[bytePos]

			switch {
			case !inQuote && c == delim[0] && matchesFullDelim(chunk, bytePos, delim):
				*dst = append(*dst, fileOffset+int64(start+bytePos))
				pos = bytePos + delimLen

			case c == '\n' && !inQuote:
				*dst = append(*dst, fileOffset+int64(start+bytePos))
				linesRead++
				pos = bytePos + 1
				if cfg.NMax > 0 && linesAlreadyRead+linesRead >= cfg.NMax {
					return Result{LinesRead: linesRead, EndingInQuote: inQuote, Stopped: true}
				}

			case hasQuote && c == quote:
				inQuote = !inQuote
				pos = bytePos + 1

			case trackBackslash && c == '\\':
				// Skip the escaped byte even if it is itself a quote or
				// newline, per SPEC_FULL.md §4.2.
				pos = bytePos + 2

			default:
				pos = bytePos + 1
			}
		}
	}

	return Result{LinesRead: linesRead, EndingInQuote: inQuote}
}

// matchesFullDelim reports whether the dialect's full (possibly multi-byte)
// delimiter occurs at chunk[pos:]. The caller has already confirmed the
// first byte matches via the DelimHead bitmap.
func matchesFullDelim(chunk []byte, pos int, delim []byte) bool {
	if pos+len(delim) > len(chunk) {
		return false
	}
	return bytes.Equal(chunk[pos:pos+len(delim)], delim)
}
