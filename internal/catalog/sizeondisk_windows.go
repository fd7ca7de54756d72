//go:build windows

package catalog

import "io/fs"

func sizeOnDisk(info fs.FileInfo) int64 {
	return info.Size()
}
