//go:build windows

package fsstat

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// Probe returns a fresh capacity snapshot for the volume holding dir.
func Probe(dir string) (Stats, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Stats{}, fmt.Errorf("resolve %s: %w", dir, err)
	}

	dirPtr, err := windows.UTF16PtrFromString(absDir)
	if err != nil {
		return Stats{}, fmt.Errorf("encode path %s: %w", absDir, err)
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(dirPtr, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return Stats{}, fmt.Errorf("disk free space for %s: %w", absDir, err)
	}

	return Stats{
		FreeSpace:      totalFreeBytes,
		AvailableSpace: freeBytesAvailable,
		TotalSpace:     totalBytes,
		// GetDiskFreeSpaceEx does not report the cluster size; assume the
		// NTFS default.
		AllocationGranularity: 4096,
	}, nil
}
