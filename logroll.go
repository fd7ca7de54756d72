// Package logroll writes a byte stream to disk as a sequence of rotated
// files while enforcing limits on file size, file age, file count and
// overall disk usage. Inspired by journald, but more general-purpose.
//
// When Write is called, the writer first rotates if the current file is
// too large or too old, then ensures enough space is available for the new
// bytes, deleting the oldest rotated file as often as needed. The file
// currently open for writing is never a deletion candidate.
package logroll

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/logroll/logroll/internal/quota"
)

var (
	// ErrOutOfSpace is returned from Write when an occupancy cap is still
	// violated after every reclaimable file has been deleted.
	ErrOutOfSpace = quota.ErrOutOfSpace

	// ErrWriterClosed is returned from Write and Flush after Close.
	ErrWriterClosed = errors.New("writer is closed")

	// ErrRotationReentered is returned when a lifecycle hook triggers a
	// nested rotation.
	ErrRotationReentered = errors.New("rotation re-entered from lifecycle hook")
)

// Config controls a Writer. It is immutable for the writer's lifetime.
type Config struct {
	// TargetDir is the directory rotated files are created in. It is
	// created if missing.
	TargetDir string

	// Prefix and Suffix frame generated file names and select which
	// directory entries count as rotated files during scans and cleanup.
	Prefix string
	Suffix string

	// MaxFileSize forces rotation before a write that would push the
	// current file past this many bytes. Required.
	MaxFileSize int64

	// MaxFileAge forces rotation when the current file has been open
	// longer than this, regardless of size. Zero disables the check.
	MaxFileAge time.Duration

	// MaxFileCount caps how many matching files may coexist. The oldest
	// files are deleted after each rotation until the cap holds. Zero
	// disables the check.
	MaxFileCount int

	// MaxUseBytes caps the total bytes occupied by matching files.
	// Zero disables the absolute cap.
	MaxUseBytes int64

	// MaxUseOfTotal caps occupied bytes relative to the total filesystem
	// size (0.01 = 1%). Reserved is subtracted from the derived cap; set
	// it to the space other services are expected to take up on the same
	// partition.
	MaxUseOfTotal float64
	Reserved      int64

	// MinAvailBytes and MinAvailOfTotal keep a floor of available space
	// that must remain after each pending write, as an absolute value and
	// relative to the total filesystem size. The higher floor applies.
	MinAvailBytes   int64
	MinAvailOfTotal float64

	// WarnIfAvailReached emits a warning when the availability floor is
	// the limiting factor. Diagnostic only; behavior is unchanged.
	WarnIfAvailReached bool

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Validate rejects nonsensical configurations at construction time.
func (c *Config) Validate() error {
	if c.TargetDir == "" {
		return errors.New("target dir must not be empty")
	}
	if strings.ContainsRune(c.Prefix, os.PathSeparator) || strings.ContainsRune(c.Suffix, os.PathSeparator) {
		return errors.New("prefix and suffix must not contain a path separator")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("max file size must be positive")
	}
	if c.MaxFileAge < 0 {
		return errors.New("max file age must not be negative")
	}
	if c.MaxFileCount < 0 {
		return errors.New("max file count must not be negative")
	}
	if c.MaxUseBytes < 0 || c.Reserved < 0 || c.MinAvailBytes < 0 {
		return errors.New("byte limits must not be negative")
	}
	if c.MaxUseOfTotal < 0 || c.MaxUseOfTotal > 1 {
		return errors.New("max use of total must be within [0, 1]")
	}
	if c.MinAvailOfTotal < 0 || c.MinAvailOfTotal > 1 {
		return errors.New("min avail of total must be within [0, 1]")
	}
	if c.Reserved > 0 && c.MaxUseOfTotal == 0 {
		return errors.New("reserved requires max use of total")
	}
	return nil
}

// Hooks receives lifecycle notifications. FileOpened runs right after a
// new file is opened (including the first one), FileClosing right before
// the current file is flushed and closed. A hook error propagates to the
// call that triggered the rotation. Hooks must not trigger a nested
// rotation; doing so fails with ErrRotationReentered.
type Hooks interface {
	FileOpened(w *Writer) error
	FileClosing(w *Writer) error
}

// NoopHooks is the Hooks implementation used by New.
type NoopHooks struct{}

func (NoopHooks) FileOpened(*Writer) error  { return nil }
func (NoopHooks) FileClosing(*Writer) error { return nil }

