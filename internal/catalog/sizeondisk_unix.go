//go:build unix

package catalog

import (
	"io/fs"
	"syscall"
)

// sizeOnDisk returns the allocated size of a file. st_blocks counts
// 512-byte units regardless of the filesystem block size. Filesystems
// with delayed allocation may report fewer blocks than bytes written, so
// the logical size is a lower bound.
func sizeOnDisk(info fs.FileInfo) int64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		if alloc := st.Blocks * 512; alloc > info.Size() {
			return alloc
		}
	}
	return info.Size()
}
