// Package mmapsrc implements ByteSource: a contiguous read-only byte region
// backed by a memory-mapped file, following the mmap-for-zero-copy approach
// of csvquery's Scanner but split out as its own reusable leaf component.
package mmapsrc

import (
	"os"

	"github.com/colidx/colidx/internal/colerr"
)

// ByteSource owns a read-only memory-mapped byte region for one file. Every
// Cell produced by a SourceIndex built over this ByteSource borrows directly
// from Data(); the slice stays valid until Close is called.
type ByteSource struct {
	path string
	data []byte
	size int64
}

// Open memory-maps path read-only. The returned ByteSource must be closed
// with Close once no Cell referencing it is still in use.
func Open(path string) (*ByteSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, colerr.NewIoError(path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, colerr.NewIoError(path, err)
	}

	data, err := mmapFile(f, st.Size())
	if err != nil {
		return nil, colerr.NewIoError(path, err)
	}

	return &ByteSource{path: path, data: data, size: st.Size()}, nil
}

// Data returns the full mapped byte region. Callers must not write through
// it; the mapping is PROT_READ.
func (b *ByteSource) Data() []byte { return b.data }

// Size returns the file size in bytes.
func (b *ByteSource) Size() int64 { return b.size }

// Path returns the path this ByteSource was opened from.
func (b *ByteSource) Path() string { return b.path }

// Close unmaps the region. Any Cell still referencing it becomes invalid to
// dereference; per SPEC_FULL.md §3 that is a caller-lifetime contract, not
// one this type enforces at runtime.
func (b *ByteSource) Close() error {
	if b.data == nil {
		return nil
	}
	err := munmapFile(b.data)
	b.data = nil
	if err != nil {
		return colerr.NewIoError(b.path, err)
	}
	return nil
}
