//go:build !windows

package mmapsrc

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile memory-maps f read-only for its full length, the unix
// counterpart of the Windows ReadAll fallback in mmap_windows.go.
func mmapFile(f *os.File, size int64) ([]byte, error) {
	if size == 0 {
		// unix.Mmap rejects a zero-length mapping; an empty ByteSource
		// never dereferences its data slice anyway.
		return []byte{}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func munmapFile(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Munmap(data)
}
