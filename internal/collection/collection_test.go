package collection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/colidx/colidx/internal/colerr"
	"github.com/colidx/colidx/internal/dialect"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestOpenConcatenatesRowsAcrossSources(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "x,y\n1,2\n3,4\n")
	b := writeFile(t, dir, "b.csv", "x,y\n5,6\n")

	cfg := dialect.Default()
	coll, err := Open(context.Background(), []string{a, b}, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer coll.Close()

	if coll.NumRows() != 3 {
		t.Fatalf("NumRows = %d, want 3", coll.NumRows())
	}
	if coll.NumColumns() != 2 {
		t.Fatalf("NumColumns = %d, want 2", coll.NumColumns())
	}
	if got := string(coll.Row(2).Cell(0).Bytes()); got != "5" {
		t.Fatalf("Row(2).Cell(0) = %q, want 5 (crossing into second source)", got)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "x,y\n1,2\n")
	b := writeFile(t, dir, "b.csv", "x,y,z\n1,2,3\n")

	cfg := dialect.Default()
	_, err := Open(context.Background(), []string{a, b}, cfg)
	if !colerr.Is[*colerr.SchemaMismatch](err) {
		t.Fatalf("expected SchemaMismatch, got %v", err)
	}
}

func TestColumnViewFullIteration(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "x,y\n1,2\n3,4\n5,6\n")

	cfg := dialect.Default()
	coll, err := Open(context.Background(), []string{a}, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer coll.Close()

	col := coll.Column(0)
	if col.Len() != 3 {
		t.Fatalf("Len = %d, want 3", col.Len())
	}

	var got []string
	cur := col.Cursor()
	for cur.Next() {
		got = append(got, string(cur.Cell().Bytes()))
	}
	want := []string{"1", "3", "5"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], w)
		}
	}
}

func TestColumnViewSliceAndSubset(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "x\n1\n2\n3\n4\n5\n")

	cfg := dialect.Default()
	coll, err := Open(context.Background(), []string{a}, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer coll.Close()

	col := coll.Column(0)
	sliced := col.Slice(1, 4)
	if sliced.Len() != 3 {
		t.Fatalf("Slice len = %d, want 3", sliced.Len())
	}
	if got := string(sliced.At(0).Bytes()); got != "2" {
		t.Fatalf("Slice.At(0) = %q, want 2", got)
	}

	subset := col.Subset([]int{4, 0, 2})
	want := []string{"5", "1", "3"}
	for i, w := range want {
		if got := string(subset.At(i).Bytes()); got != w {
			t.Fatalf("Subset.At(%d) = %q, want %q", i, got, w)
		}
	}
}

func TestColumnCursorDistanceAndEqual(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "x\n1\n2\n3\n")

	cfg := dialect.Default()
	coll, err := Open(context.Background(), []string{a}, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer coll.Close()

	col := coll.Column(0)
	c1 := col.Cursor()
	c1.Next()
	c2 := col.Cursor()
	c2.Next()
	c2.Next()

	if d := c1.Distance(c2); d != 1 {
		t.Fatalf("Distance = %d, want 1", d)
	}
	if c1.Equal(c2) {
		t.Fatalf("cursors at different positions should not be Equal")
	}
	c1.Next()
	if !c1.Equal(c2) {
		t.Fatalf("cursors at the same position should be Equal")
	}
}

func TestHeaderView(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "name,age\nbob,30\n")

	cfg := dialect.Default()
	coll, err := Open(context.Background(), []string{a}, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer coll.Close()

	if got := string(coll.Header().Cell(0).Bytes()); got != "name" {
		t.Fatalf("Header().Cell(0) = %q, want name", got)
	}
}
