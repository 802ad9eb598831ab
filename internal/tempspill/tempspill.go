// Package tempspill materializes a non-file stream (a pipe, a network
// response body, anything that is only an io.Reader) into a temporary file
// so the indexing engine can memory-map it like any other source, per
// SPEC_FULL.md §6: "Non-file streams are materialized to a temporary file by
// an external collaborator before indexing." It follows the temp-directory
// lifecycle of csvquery's Indexer.tempDir / Sorter tempSortDir pair.
package tempspill

import (
	"fmt"
	"io"
	"os"
)

// File is a temp file spilled from a stream. Close removes it from disk;
// callers that hand Path to mmapsrc.Open should keep the File alive (and
// call Close) only after the resulting ByteSource has itself been closed.
type File struct {
	path string
}

// Spill copies r into a new temp file under dir (the system temp directory
// if dir is empty) and returns a handle to it.
func Spill(dir string, r io.Reader) (*File, error) {
	f, err := os.CreateTemp(dir, "colidx-spill-*")
	if err != nil {
		return nil, fmt.Errorf("colidx: tempspill: creating temp file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("colidx: tempspill: copying stream: %w", err)
	}

	return &File{path: f.Name()}, nil
}

// Path returns the on-disk path of the spilled file.
func (f *File) Path() string { return f.path }

// Close removes the spilled temp file.
func (f *File) Close() error {
	if f.path == "" {
		return nil
	}
	err := os.Remove(f.path)
	f.path = ""
	return err
}
