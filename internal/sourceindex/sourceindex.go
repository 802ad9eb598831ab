// Package sourceindex implements SourceIndex: the per-file product of
// ParallelIndexBuilder — an immutable offset vector plus the dialect and
// shape (columns, rows) needed to answer random-access Get(r, c) requests
// in O(1), per SPEC_FULL.md §4.4. It follows the teacher's pattern of a
// small, read-only value type built once at open time and never mutated
// (mirrored from how csvquery's Scanner exposes headers/columns after
// NewScanner returns).
package sourceindex

import (
	"context"

	"github.com/colidx/colidx/internal/builder"
	"github.com/colidx/colidx/internal/dialect"
	"github.com/colidx/colidx/internal/mmapsrc"
)

// Cell is a borrowed byte range into a ByteSource, plus escape metadata, per
// SPEC_FULL.md §3. Cells are values: freely copied, never owning.
type Cell struct {
	data        []byte
	begin       int
	end         int
	needsDecode bool
}

// Bytes returns the cell's raw bytes: enclosing quotes, if any, are already
// stripped; escape sequences are not yet decoded. The slice is a sub-range of the ByteSource's backing array; it is valid only
// while that source remains open.
func (c Cell) Bytes() []byte { return c.data[c.begin:c.end] }

// Len reports the cell's raw byte length.
func (c Cell) Len() int { return c.end - c.begin }

// NeedsDecode reports whether the cell was enclosed in quotes (stripped by
// Get) or Bytes() contains an escape sequence the active dialect recognizes
// (doubled quotes and/or backslash escapes).
func (c Cell) NeedsDecode() bool { return c.needsDecode }

// SourceIndex is the immutable per-file index SPEC_FULL.md §3 describes:
// a ByteSource plus its offset vector, shape, and dialect.
type SourceIndex struct {
	source          *mmapsrc.ByteSource
	offsets         []int64
	header          []int64
	columns         int
	rows            int
	dataStart       int64
	headerDataStart int64
	dialect         dialect.Config
}

// Open memory-maps path and builds its SourceIndex via ParallelIndexBuilder.
func Open(ctx context.Context, path string, cfg dialect.Config) (*SourceIndex, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src, err := mmapsrc.Open(path)
	if err != nil {
		return nil, err
	}

	res, err := builder.Build(ctx, src, cfg)
	if err != nil {
		src.Close()
		return nil, err
	}

	return &SourceIndex{
		source:          src,
		offsets:         res.DataOffsets,
		header:          res.HeaderOffsets,
		columns:         res.Columns,
		rows:            res.Rows,
		dataStart:       res.DataStart,
		headerDataStart: res.HeaderStart,
		dialect:         cfg,
	}, nil
}

// Close releases the underlying memory map. Any Cell still referencing it
// becomes invalid to dereference.
func (s *SourceIndex) Close() error { return s.source.Close() }

// NumRows returns the number of data rows (excluding the header, if any).
func (s *SourceIndex) NumRows() int { return s.rows }

// NumColumns returns the column count established by the header (or the
// first data row, if there is no header).
func (s *SourceIndex) NumColumns() int { return s.columns }

// Path returns the underlying file's path.
func (s *SourceIndex) Path() string { return s.source.Path() }

// HasHeader reports whether this index has a separate header row.
func (s *SourceIndex) HasHeader() bool { return s.dialect.HasHeader }

// Header returns cell c of the header row. It panics if this index has no
// header or c is out of range, matching Get's infallible-after-build
// contract (SPEC_FULL.md §7: "Cell access is infallible once a SourceIndex
// is built").
func (s *SourceIndex) Header(c int) Cell {
	return s.cellAt(s.header, s.headerDataStart, 0, c)
}

// Get returns cell (r, c) of the data rows as a borrowed Cell.
func (s *SourceIndex) Get(r, c int) Cell {
	return s.cellAt(s.offsets, s.dataStart, r, c)
}

func (s *SourceIndex) cellAt(offsets []int64, rowDataStart int64, r, c int) Cell {
	k := r*s.columns + c
	data := s.source.Data()

	// normalizeRow pads a short ragged row by repeating its terminating
	// offset into every missing trailing slot. Two real terminator offsets
	// are never equal (each is a distinct, strictly later byte position), so
	// offsets[k-1] == offsets[k] unambiguously marks a padded, empty cell —
	// return it directly rather than running terminatorLen past the row's
	// real end.
	if k > 0 && offsets[k-1] == offsets[k] {
		pos := int(offsets[k])
		return Cell{data: data, begin: pos, end: pos}
	}

	var rawBegin int64
	if k == 0 {
		rawBegin = rowDataStart
	} else {
		prev := offsets[k-1]
		rawBegin = prev + terminatorLen(data, prev, s.dialect)
	}
	rawEnd := offsets[k]

	begin, end := int(rawBegin), int(rawEnd)

	// CR stripping: only valid before a newline terminator.
	if end > begin && end <= len(data) && data[end-1] == '\r' && isNewlineTerminator(data, rawEnd) {
		end--
	}

	if s.dialect.TrimWS {
		begin, end = trimWS(data, begin, end)
	}

	needsDecode := false
	if s.dialect.HasQuote() && end-begin >= 2 && data[begin] == s.dialect.Quote && data[end-1] == s.dialect.Quote {
		begin++
		end--
		needsDecode = true
	}
	if !needsDecode {
		needsDecode = containsEscape(data[begin:end], s.dialect)
	}

	return Cell{data: data, begin: begin, end: end, needsDecode: needsDecode}
}

func isNewlineTerminator(data []byte, off int64) bool {
	return int(off) < len(data) && data[off] == '\n'
}

// terminatorLen returns how many bytes the terminator at off occupies: 1 for
// a newline, the configured delimiter length otherwise.
func terminatorLen(data []byte, off int64, cfg dialect.Config) int64 {
	if isNewlineTerminator(data, off) {
		return 1
	}
	return int64(cfg.DelimLen())
}

func trimWS(data []byte, begin, end int) (int, int) {
	for begin < end && (data[begin] == ' ' || data[begin] == '\t') {
		begin++
	}
	for end > begin && (data[end-1] == ' ' || data[end-1] == '\t') {
		end--
	}
	return begin, end
}

func containsEscape(span []byte, cfg dialect.Config) bool {
	if cfg.EscapeBackslash {
		for i := 0; i < len(span); i++ {
			if span[i] == '\\' {
				return true
			}
		}
	}
	if cfg.EscapeDouble && cfg.HasQuote() {
		for i := 0; i+1 < len(span); i++ {
			if span[i] == cfg.Quote && span[i+1] == cfg.Quote {
				return true
			}
		}
	}
	return false
}
