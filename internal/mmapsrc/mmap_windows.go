//go:build windows

package mmapsrc

import (
	"io"
	"os"
)

// mmapFile falls back to a full read on Windows, matching csvquery's own
// mmap_windows.go placeholder (it avoids the unsafe pointer arithmetic of a
// real Windows file-mapping object for now).
func mmapFile(f *os.File, size int64) ([]byte, error) {
	return io.ReadAll(f)
}

func munmapFile(data []byte) error {
	return nil
}
