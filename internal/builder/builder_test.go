package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/colidx/colidx/internal/dialect"
	"github.com/colidx/colidx/internal/mmapsrc"
)

func openTemp(t *testing.T, contents string) *mmapsrc.ByteSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	src, err := mmapsrc.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func TestBuildBasicHeaderAndRows(t *testing.T) {
	src := openTemp(t, "a,b,c\n1,2,3\n4,5,6\n")
	cfg := dialect.Default()
	cfg.NumThreads = 1

	res, err := Build(context.Background(), src, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Columns != 3 {
		t.Fatalf("Columns = %d, want 3", res.Columns)
	}
	if res.Rows != 2 {
		t.Fatalf("Rows = %d, want 2", res.Rows)
	}
	if len(res.HeaderOffsets) != 3 {
		t.Fatalf("HeaderOffsets len = %d, want 3", len(res.HeaderOffsets))
	}
	if len(res.DataOffsets) != res.Rows*res.Columns {
		t.Fatalf("DataOffsets len = %d, want %d", len(res.DataOffsets), res.Rows*res.Columns)
	}
}

func TestBuildIsThreadCountIndependent(t *testing.T) {
	contents := "h1,h2\n"
	for i := 0; i < 200; i++ {
		contents += "aaaa,bbbb\n"
	}

	var prev *Result
	for _, threads := range []int{1, 2, 8} {
		src := openTemp(t, contents)
		cfg := dialect.Default()
		cfg.NumThreads = threads

		res, err := Build(context.Background(), src, cfg)
		if err != nil {
			t.Fatalf("Build (threads=%d): %v", threads, err)
		}
		if prev != nil {
			if res.Rows != prev.Rows || res.Columns != prev.Columns {
				t.Fatalf("threads=%d: rows/columns = %d/%d, want %d/%d", threads, res.Rows, res.Columns, prev.Rows, prev.Columns)
			}
			if len(res.DataOffsets) != len(prev.DataOffsets) {
				t.Fatalf("threads=%d: DataOffsets len = %d, want %d", threads, len(res.DataOffsets), len(prev.DataOffsets))
			}
			for i := range res.DataOffsets {
				if res.DataOffsets[i] != prev.DataOffsets[i] {
					t.Fatalf("threads=%d: DataOffsets[%d] = %d, want %d", threads, i, res.DataOffsets[i], prev.DataOffsets[i])
				}
			}
		}
		prev = &res
	}
}

func TestBuildQuotedFieldSpanningChunkBoundary(t *testing.T) {
	// A quoted field long enough that an equal split across many threads is
	// very likely to land a chunk boundary inside it; reconcile must still
	// produce the correct offsets regardless.
	big := ""
	for i := 0; i < 500; i++ {
		big += "xyz "
	}
	contents := "h1,h2\n" + `"` + big + `",tail` + "\n" + "a,b\n"

	src := openTemp(t, contents)
	cfg := dialect.Default()
	cfg.NumThreads = 8

	res, err := Build(context.Background(), src, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Rows != 2 {
		t.Fatalf("Rows = %d, want 2", res.Rows)
	}
	if res.Columns != 2 {
		t.Fatalf("Columns = %d, want 2", res.Columns)
	}
}

func TestBuildTrailingRowWithoutNewline(t *testing.T) {
	src := openTemp(t, "a,b\n1,2")
	cfg := dialect.Default()
	cfg.NumThreads = 1

	res, err := Build(context.Background(), src, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Rows != 1 {
		t.Fatalf("Rows = %d, want 1", res.Rows)
	}
	if res.DataOffsets[len(res.DataOffsets)-1] != int64(len("a,b\n1,2")) {
		t.Fatalf("last offset = %d, want synthetic EOF offset %d", res.DataOffsets[len(res.DataOffsets)-1], len("a,b\n1,2"))
	}
}

func TestBuildRaggedRowIsPaddedAndReported(t *testing.T) {
	var ragged []dialect.RaggedRow
	src := openTemp(t, "a,b,c\n1,2\n4,5,6\n")
	cfg := dialect.Default()
	cfg.NumThreads = 1
	cfg.OnRaggedRow = func(r dialect.RaggedRow) { ragged = append(ragged, r) }

	res, err := Build(context.Background(), src, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(ragged) != 1 {
		t.Fatalf("ragged callbacks = %d, want 1", len(ragged))
	}
	if ragged[0].Expected != 3 || ragged[0].Got != 2 {
		t.Fatalf("ragged = %+v, want Expected=3 Got=2", ragged[0])
	}
	if len(res.DataOffsets) != res.Rows*res.Columns {
		t.Fatalf("DataOffsets len = %d, want %d", len(res.DataOffsets), res.Rows*res.Columns)
	}
}

func TestBuildUnterminatedQuoteAtEOFIsMalformedByDefault(t *testing.T) {
	src := openTemp(t, `a,"unterminated`)
	cfg := dialect.Default()
	cfg.NumThreads = 1

	_, err := Build(context.Background(), src, cfg)
	if err == nil {
		t.Fatalf("expected MalformedInput, got nil")
	}
}

func TestBuildUnterminatedQuoteAtEOFLenient(t *testing.T) {
	src := openTemp(t, "h1,h2\n"+`a,"unterminated`)
	cfg := dialect.Default()
	cfg.NumThreads = 1
	cfg.LenientUnterminatedQuote = true

	res, err := Build(context.Background(), src, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Rows != 1 {
		t.Fatalf("Rows = %d, want 1", res.Rows)
	}
}
