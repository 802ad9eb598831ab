package preamble

import "testing"

func TestSkipBOMVariants(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want int
	}{
		{"none", []byte("a,b\n"), 0},
		{"utf8", append([]byte{0xEF, 0xBB, 0xBF}, "a,b\n"...), 3},
		{"utf16be", append([]byte{0xFE, 0xFF}, "a,b\n"...), 2},
		{"utf16le", append([]byte{0xFF, 0xFE}, "a,b\n"...), 2},
		{"utf32be", append([]byte{0x00, 0x00, 0xFE, 0xFF}, "a,b\n"...), 4},
		{"utf32le", append([]byte{0xFF, 0xFE, 0x00, 0x00}, "a,b\n"...), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SkipBOM(tc.data); got != tc.want {
				t.Fatalf("SkipBOM(%q) = %d, want %d", tc.data, got, tc.want)
			}
		})
	}
}

func TestFindFirstLineNoPreamble(t *testing.T) {
	data := []byte("a,b,c\n1,2,3\n")
	if got := FindFirstLine(data, 0, false, 0); got != 0 {
		t.Fatalf("FindFirstLine = %d, want 0", got)
	}
}

func TestFindFirstLineSkipLinesOnly(t *testing.T) {
	data := []byte("junk line one\njunk line two\na,b,c\n1,2,3\n")
	got := FindFirstLine(data, 2, false, 0)
	want := len("junk line one\njunk line two\n")
	if got != want {
		t.Fatalf("FindFirstLine = %d, want %d (%q)", got, want, data[got:])
	}
}

func TestFindFirstLineSkipsCommentAndBlankLines(t *testing.T) {
	data := []byte("# comment\n\n  \na,b,c\n1,2,3\n")
	got := FindFirstLine(data, 0, true, '#')
	want := len("# comment\n\n  \n")
	if got != want {
		t.Fatalf("FindFirstLine = %d, want %d (%q)", got, want, data[got:])
	}
}

func TestFindFirstLineWithoutCommentSupportStopsAtHashLine(t *testing.T) {
	data := []byte("#not,a,comment\na,b,c\n")
	if got := FindFirstLine(data, 0, false, '#'); got != 0 {
		t.Fatalf("FindFirstLine = %d, want 0 (hash line is data without HasComment)", got)
	}
}

// TestFindFirstLineBOMSkipAndComment covers scenario S5: a BOM, raw skipped
// lines, and comment/blank lines must all be consumed together before the
// header, in whatever order they appear.
func TestFindFirstLineBOMSkipAndComment(t *testing.T) {
	body := "metadata line\n# generated report\n\na,b,c\n1,2,3\n"
	data := append([]byte{0xEF, 0xBB, 0xBF}, body...)

	got := FindFirstLine(data, 1, true, '#')
	want := len([]byte{0xEF, 0xBB, 0xBF}) + len("metadata line\n# generated report\n\n")
	if got != want {
		t.Fatalf("FindFirstLine = %d, want %d (%q)", got, want, data[got:])
	}
	if string(data[got:got+5]) != "a,b,c" {
		t.Fatalf("FindFirstLine landed on %q, want header line", data[got:])
	}
}

func TestFindFirstLineAllLinesConsumed(t *testing.T) {
	data := []byte("# only comments\n# nothing else\n")
	if got := FindFirstLine(data, 0, true, '#'); got != len(data) {
		t.Fatalf("FindFirstLine = %d, want %d (end of data)", got, len(data))
	}
}
