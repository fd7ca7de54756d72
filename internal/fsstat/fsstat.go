// Package fsstat reports capacity figures for the filesystem backing a directory.
package fsstat

// Stats is a point-in-time capacity snapshot for a mounted filesystem.
// All figures are in bytes, computed as block counts multiplied by the
// block size, so they are independent of absolute byte addressing.
type Stats struct {
	FreeSpace             uint64
	AvailableSpace        uint64
	TotalSpace            uint64
	AllocationGranularity uint64
}

// ProbeFunc matches Probe so callers can substitute a fake in tests.
type ProbeFunc func(dir string) (Stats, error)
