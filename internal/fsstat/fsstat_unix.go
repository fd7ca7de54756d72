//go:build unix

package fsstat

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Probe returns a fresh capacity snapshot for the filesystem holding dir.
// Results are never cached; every call performs a statfs syscall.
func Probe(dir string) (Stats, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return Stats{}, fmt.Errorf("statfs %s: %w", dir, err)
	}

	bsize := uint64(st.Bsize)
	return Stats{
		FreeSpace:             bsize * uint64(st.Bfree),
		AvailableSpace:        bsize * uint64(st.Bavail),
		TotalSpace:            bsize * uint64(st.Blocks),
		AllocationGranularity: bsize,
	}, nil
}
