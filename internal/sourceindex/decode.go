package sourceindex

import (
	"fmt"

	"github.com/alphadose/haxmap"
	"github.com/colidx/colidx/internal/dialect"
)

// decodeCache memoizes unescaped cell values so that walking the same column
// twice (a common ColumnView access pattern) does not re-allocate, per
// SPEC_FULL.md §2.2. It is a package-level cache shared by every
// SourceIndex, keyed on (source pointer, row, col) so entries from
// different sources never collide.
var decodeCache = haxmap.New[string, string](1 << 16)

func decodeKey(s *SourceIndex, row, col int) string {
	return fmt.Sprintf("%p:%d:%d", s, row, col)
}

// Decoder resolves a Cell's decoded string value, consulting decodeCache
// before falling through to Decode.
type Decoder struct {
	source *SourceIndex
}

// NewDecoder builds a Decoder bound to one SourceIndex, used to cache
// decodes against stable (row, col) identity.
func NewDecoder(s *SourceIndex) Decoder { return Decoder{source: s} }

// String returns cell (r, c)'s value: its borrowed bytes verbatim (as a
// fresh string) when no decoding is needed, or the cached/decoded result
// otherwise.
func (d Decoder) String(r, c int) string {
	cell := d.source.Get(r, c)
	if !cell.NeedsDecode() {
		return string(cell.Bytes())
	}

	key := decodeKey(d.source, r, c)
	if cached, ok := decodeCache.Get(key); ok {
		return cached
	}

	decoded := Decode(cell, d.source.dialect)
	decodeCache.Set(key, decoded)
	return decoded
}

// Decode converts a Cell's raw bytes into an unescaped string, replacing
// doubled quotes and/or backslash escapes per the dialect, per SPEC_FULL.md
// §4.5. Calling Decode on a cell with NeedsDecode() == false is harmless but
// allocates needlessly; prefer Bytes() directly in that case.
func Decode(c Cell, cfg dialect.Config) string {
	raw := c.Bytes()
	out := make([]byte, 0, len(raw))

	for i := 0; i < len(raw); i++ {
		if cfg.EscapeDouble && cfg.HasQuote() && raw[i] == cfg.Quote && i+1 < len(raw) && raw[i+1] == cfg.Quote {
			out = append(out, cfg.Quote)
			i++
			continue
		}
		if cfg.EscapeBackslash && raw[i] == '\\' && i+1 < len(raw) {
			out = append(out, raw[i+1])
			i++
			continue
		}
		out = append(out, raw[i])
	}

	return string(out)
}
