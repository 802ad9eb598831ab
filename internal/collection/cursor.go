package collection

import "github.com/colidx/colidx/internal/sourceindex"

// cursor is the closed interface SPEC_FULL.md §9 calls for in place of the
// original's virtual base_iterator: exactly two implementations exist,
// fullCursor (every row of the collection) and subsetCursor (an arbitrary
// index-vector or contiguous slice over another cursor).
type cursor interface {
	len() int
	at(n int) sourceindex.Cell
}

// fullCursor walks every global row of a collection for one column.
type fullCursor struct {
	coll *IndexCollection
	col  int
}

func (f *fullCursor) len() int                  { return f.coll.NumRows() }
func (f *fullCursor) at(n int) sourceindex.Cell { return f.coll.cellAt(f.col, n) }

// subsetCursor re-indexes another cursor through an explicit index vector,
// used for both Slice (a contiguous run) and Subset (arbitrary indices).
type subsetCursor struct {
	base    cursor
	indices []int
}

func (s *subsetCursor) len() int                 { return len(s.indices) }
func (s *subsetCursor) at(n int) sourceindex.Cell { return s.base.at(s.indices[n]) }

// ColumnView is the public, zero-copy per-column view SPEC_FULL.md §4.6
// describes: Len/indexed access plus Slice/Subset composition, with a
// Cursor() for bidirectional iteration.
type ColumnView struct {
	c cursor
}

// Len returns how many rows this view covers.
func (v ColumnView) Len() int { return v.c.len() }

// At returns the cell at position n within this view (not a global row
// index — for a Slice or Subset view, n indexes into the narrowed range).
func (v ColumnView) At(n int) sourceindex.Cell { return v.c.at(n) }

// Slice returns a view over the contiguous sub-range [a, b) of this view.
func (v ColumnView) Slice(a, b int) ColumnView {
	indices := make([]int, b-a)
	for i := range indices {
		indices[i] = a + i
	}
	return ColumnView{c: &subsetCursor{base: v.c, indices: indices}}
}

// Subset returns a view over exactly the positions named by indices, in the
// order given (indices may repeat or be out of original order).
func (v ColumnView) Subset(indices []int) ColumnView {
	cp := append([]int(nil), indices...)
	return ColumnView{c: &subsetCursor{base: v.c, indices: cp}}
}

// Cursor returns a fresh bidirectional iterator positioned before the first
// element (call Next to reach position 0).
func (v ColumnView) Cursor() *ColumnCursor { return &ColumnCursor{view: v, pos: -1} }

// ColumnCursor is a stateful, bidirectional position into a ColumnView,
// supporting the advance/jump/equality/distance operations SPEC_FULL.md
// §4.6 calls for.
type ColumnCursor struct {
	view ColumnView
	pos  int
}

// Next advances one position forward, reporting whether the new position is
// valid.
func (c *ColumnCursor) Next() bool {
	if c.pos+1 >= c.view.Len() {
		c.pos = c.view.Len()
		return false
	}
	c.pos++
	return true
}

// Prev retreats one position backward, reporting whether the new position
// is valid.
func (c *ColumnCursor) Prev() bool {
	if c.pos <= 0 {
		c.pos = -1
		return false
	}
	c.pos--
	return true
}

// Seek jumps directly to position n (may be used to jump by N via
// c.Seek(c.Pos() + n)).
func (c *ColumnCursor) Seek(n int) { c.pos = n }

// Pos returns the cursor's current position.
func (c *ColumnCursor) Pos() int { return c.pos }

// Valid reports whether the cursor currently sits on an in-range element.
func (c *ColumnCursor) Valid() bool { return c.pos >= 0 && c.pos < c.view.Len() }

// Cell returns the cell at the cursor's current position. It is only valid
// to call while Valid() is true.
func (c *ColumnCursor) Cell() sourceindex.Cell { return c.view.At(c.pos) }

// Equal reports whether two cursors over the same underlying view sit at
// the same position.
func (c *ColumnCursor) Equal(other *ColumnCursor) bool {
	return c.view.c == other.view.c && c.pos == other.pos
}

// Distance returns other.Pos() - c.Pos(), the number of Next calls needed to
// walk from c to other (negative if other precedes c).
func (c *ColumnCursor) Distance(other *ColumnCursor) int { return other.pos - c.pos }
