// Package simd classifies bytes of a chunk against the RegionIndexer
// interest set {delimiter head byte, newline, quote, backslash} into
// per-position bitmaps, generalizing csvquery's internal/simd package
// (which did the same for a fixed {quote, comma, newline} set) to the full
// dialect surface of SPEC_FULL.md §4.2.
package simd

import "golang.org/x/sys/cpu"

// Bitmaps holds one bit per input byte, packed into 64-bit words (bit i%64
// of word i/64), marking which interest-set class that byte belongs to.
// Backslash is nil when the dialect has EscapeBackslash disabled.
type Bitmaps struct {
	Quote     []uint64
	DelimHead []uint64
	Newline   []uint64
	Backslash []uint64
}

// NewBitmaps allocates bitmaps sized for n input bytes. trackBackslash
// controls whether the Backslash bitmap is allocated at all.
func NewBitmaps(n int, trackBackslash bool) Bitmaps {
	words := (n + 63) / 64
	bm := Bitmaps{
		Quote:     make([]uint64, words),
		DelimHead: make([]uint64, words),
		Newline:   make([]uint64, words),
	}
	if trackBackslash {
		bm.Backslash = make([]uint64, words)
	}
	return bm
}

var wideScanAvailable bool

func init() {
	wideScanAvailable = cpu.X86.HasAVX2 || cpu.X86.HasAVX512F
}

// HasWideScan reports whether this CPU advertises a wide SIMD path. The scan
// below is portable Go either way — no hand-written assembly kernel ships
// in this tree — but HasWideScan is the dispatch point a future AVX2/AVX-512
// kernel would hook into, mirroring csvquery's scanImpl function-pointer
// pattern in internal/simd/simd_amd64.go.
func HasWideScan() bool { return wideScanAvailable }

// Scan classifies every byte of data into bm. quote == 0 means quoting is
// disabled for this dialect; as in vroom's index_region, a disabled quote
// character can never match because well-formed text data does not contain
// NUL bytes.
func Scan(data []byte, quote, delimHead byte, trackBackslash bool, bm Bitmaps) {
	for i := 0; i < len(data); i++ {
		c := data[i]
		word, bit := i/64, uint(i%64)
		switch {
		case c == quote:
			bm.Quote[word] |= 1 << bit
		case c == delimHead:
			bm.DelimHead[word] |= 1 << bit
		case c == '\n':
			bm.Newline[word] |= 1 << bit
		case trackBackslash && c == '\\':
			bm.Backslash[word] |= 1 << bit
		}
	}
}

// Bit reports whether bit position i is set in bits (nil-safe: a nil bitmap,
// i.e. Backslash when trackBackslash was false, reports false everywhere).
func Bit(bits []uint64, i int) bool {
	if bits == nil {
		return false
	}
	word, bit := i/64, uint(i%64)
	if word >= len(bits) {
		return false
	}
	return bits[word]&(1<<bit) != 0
}
