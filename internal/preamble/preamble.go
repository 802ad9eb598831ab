// Package preamble locates the byte offset at which the header (or, absent
// a header, the first data row) begins: BOM detection, skip_lines, and
// blank/comment line skipping, per SPEC_FULL.md §4.1. It is a direct port of
// vroom's index::skip_bom / index::find_first_line (original_source/src/index.h)
// into the byte-slice-over-ByteSource style csvquery uses elsewhere.
package preamble

import "bytes"

// bomTable lists the byte-order marks recognized at offset 0, longest match
// first so a UTF-32LE prefix isn't mistaken for UTF-16LE.
var bomTable = []struct {
	bytes []byte
}{
	{[]byte{0x00, 0x00, 0xFE, 0xFF}}, // UTF-32BE
	{[]byte{0xFF, 0xFE, 0x00, 0x00}}, // UTF-32LE
	{[]byte{0xEF, 0xBB, 0xBF}},       // UTF-8
	{[]byte{0xFE, 0xFF}},             // UTF-16BE
	{[]byte{0xFF, 0xFE}},             // UTF-16LE
}

// SkipBOM returns the length of a recognized byte-order mark at the start of
// data, or 0 if none is present.
func SkipBOM(data []byte) int {
	for _, bom := range bomTable {
		if len(data) >= len(bom.bytes) && bytes.Equal(data[:len(bom.bytes)], bom.bytes) {
			return len(bom.bytes)
		}
	}
	return 0
}

// isBlankOrComment reports whether the line starting at data[begin:] is
// blank, or (when hasComment) begins, after leading spaces/tabs, with
// commentChar.
func isBlankOrComment(data []byte, begin int, hasComment bool, commentChar byte) bool {
	if begin >= len(data) {
		return true
	}
	if data[begin] == '\n' {
		return true
	}
	i := begin
	for i < len(data) && (data[i] == ' ' || data[i] == '\t') {
		i++
	}
	if i >= len(data) || data[i] == '\n' {
		return true
	}
	if hasComment && data[i] == commentChar {
		return true
	}
	return false
}

// findNextNewline returns the offset of the next '\n' at or after begin, or
// len(data) if none remains.
func findNextNewline(data []byte, begin int) int {
	if begin >= len(data) {
		return len(data)
	}
	if idx := bytes.IndexByte(data[begin:], '\n'); idx >= 0 {
		return begin + idx
	}
	return len(data)
}

// FindFirstLine returns the byte offset at which parsing should begin: past
// any BOM, past skipLines raw lines, and past any run of blank or comment
// lines (interleaved, exactly as vroom's find_first_line loop allows skip_
// and the blank/comment test to both keep advancing the cursor).
func FindFirstLine(data []byte, skipLines int, hasComment bool, commentChar byte) int {
	begin := SkipBOM(data)

	for {
		blankOrComment := begin < len(data) && isBlankOrComment(data, begin, hasComment, commentChar)
		if !blankOrComment && skipLines <= 0 {
			break
		}
		nl := findNextNewline(data, begin)
		if nl >= len(data) {
			return len(data)
		}
		begin = nl + 1
		if skipLines > 0 {
			skipLines--
		}
	}

	return begin
}
