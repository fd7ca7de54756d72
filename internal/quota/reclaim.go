package quota

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/logroll/logroll/internal/catalog"
)

// Reclaimer deletes rotated files, oldest-by-name first, to free space.
type Reclaimer struct {
	Dir    string
	Prefix string
	Suffix string
	Log    *slog.Logger
}

func (r *Reclaimer) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// DeleteOldest removes the oldest matching file whose name is not exclude.
// A file that vanished between listing and deletion is skipped in favor of
// the next candidate. Returns ErrOutOfSpace when no deletable file remains.
func (r *Reclaimer) DeleteOldest(exclude string) error {
	entries, err := catalog.List(r.Dir, r.Prefix, r.Suffix, r.logger())
	if err != nil {
		return err
	}
	catalog.SortByName(entries)

	for _, e := range entries {
		if e.Name == exclude {
			continue
		}
		err := os.Remove(e.Path)
		if err == nil {
			r.logger().Info("reclaimed rotated file", "name", e.Name, "size", e.Size)
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("delete %s: %w", e.Path, err)
	}
	return ErrOutOfSpace
}
