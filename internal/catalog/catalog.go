// Package catalog enumerates the rotated files in a target directory.
//
// The directory listing is the only state the writer keeps about past
// rotations; there is no index or manifest, so every listing is a fresh
// read of the directory.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry describes one rotated file.
type Entry struct {
	Name string
	Path string
	// Size is the logical file size.
	Size int64
	// SizeOnDisk is the allocated size, which is what disk quotas care about.
	SizeOnDisk int64
}

// List returns the regular files in dir whose name starts with prefix and
// ends with suffix, in no particular order. Entries whose metadata cannot
// be read are skipped with a diagnostic rather than failing the listing.
func List(dir, prefix, suffix string, log *slog.Logger) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range dirents {
		if !de.Type().IsRegular() {
			continue
		}
		name := de.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			log.Warn("skipping entry without metadata", "name", name, "error", err)
			continue
		}
		entries = append(entries, Entry{
			Name:       name,
			Path:       filepath.Join(dir, name),
			Size:       info.Size(),
			SizeOnDisk: sizeOnDisk(info),
		})
	}
	return entries, nil
}

// SortByName orders entries lexicographically ascending. Generated names
// embed a sortable timestamp, so this is oldest-first.
func SortByName(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}
