package region

import (
	"reflect"
	"testing"

	"github.com/colidx/colidx/internal/dialect"
)

func offsetsFor(t *testing.T, input string, cfg dialect.Config) []int64 {
	t.Helper()
	var dst []int64
	res := Index([]byte(input), 0, len(input), 0, cfg, false, 0, &dst)
	if res.EndingInQuote {
		t.Fatalf("input %q ended inside a quote unexpectedly", input)
	}
	return dst
}

func TestIndexBasicCommaNewline(t *testing.T) {
	cfg := dialect.Default()
	got := offsetsFor(t, "a,b,c\n1,2,3\n", cfg)
	want := []int64{1, 3, 5, 7, 9, 11}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
}

func TestIndexQuotedCommaIsNotATerminator(t *testing.T) {
	cfg := dialect.Default()
	got := offsetsFor(t, `"x,y",z` + "\n", cfg)
	// The comma inside the quotes is never pushed; only the closing comma
	// and the trailing newline are.
	want := []int64{5, 7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
}

func TestIndexEmbeddedNewlineInQuotedFieldIsNotCounted(t *testing.T) {
	cfg := dialect.Default()
	input := "\"line1\nline2\",b\n"
	var dst []int64
	res := Index([]byte(input), 0, len(input), 0, cfg, false, 0, &dst)

	if res.LinesRead != 1 {
		t.Fatalf("LinesRead = %d, want 1 (embedded newline must not count)", res.LinesRead)
	}
	// The only pushed offsets are the comma after the closing quote and the
	// final newline; the embedded \n at index 6 must be absent.
	for _, off := range dst {
		if off == 6 {
			t.Fatalf("embedded newline at offset 6 must not be pushed, got %v", dst)
		}
	}
}

func TestIndexBackslashEscapeSkipsNextByte(t *testing.T) {
	cfg := dialect.Default()
	cfg.EscapeBackslash = true
	cfg.Quote = 0 // isolate backslash behavior from quote toggling
	input := `x\,y` + "\n"
	got := offsetsFor(t, input, cfg)
	// The comma at index 2 is escaped (preceded by backslash at index 1) and
	// must not be pushed; only the trailing newline is.
	want := []int64{4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
}

func TestIndexDoubledQuoteTogglesTwice(t *testing.T) {
	cfg := dialect.Default()
	input := `"he said ""hi"""` + "\n"
	var dst []int64
	res := Index([]byte(input), 0, len(input), 0, cfg, false, 0, &dst)
	if res.EndingInQuote {
		t.Fatalf("doubled-quote field should end with balanced quote state")
	}
	if len(dst) != 1 {
		t.Fatalf("expected exactly the trailing newline offset, got %v", dst)
	}
}

func TestIndexRespectsStartingInQuoteState(t *testing.T) {
	cfg := dialect.Default()
	// Simulate a chunk boundary that lands inside an already-open quote:
	// the leading comma (still inside the open quote) must NOT be treated
	// as a terminator; only the comma after the closing quote and the
	// trailing newline are.
	input := `a,b",c` + "\n"
	var dst []int64
	res := Index([]byte(input), 0, len(input), 0, cfg, true, 0, &dst)
	want := []int64{4, int64(len(input) - 1)}
	if !reflect.DeepEqual(dst, want) {
		t.Fatalf("offsets = %v, want %v (res=%+v)", dst, want, res)
	}
}

func TestIndexNMaxStopsEarly(t *testing.T) {
	cfg := dialect.Default()
	cfg.NMax = 2
	input := "a\nb\nc\nd\n"
	var dst []int64
	res := Index([]byte(input), 0, len(input), 0, cfg, false, 0, &dst)
	if !res.Stopped {
		t.Fatalf("expected Stopped=true once NMax reached")
	}
	if res.LinesRead != 2 {
		t.Fatalf("LinesRead = %d, want 2", res.LinesRead)
	}
}

func TestIndexMultiByteDelim(t *testing.T) {
	cfg := dialect.Default()
	cfg.Delim = []byte("::")
	cfg.Quote = 0
	input := "a::b::c\n"
	got := offsetsFor(t, input, cfg)
	want := []int64{1, 4, 7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
}
