package logroll

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/logroll/logroll/internal/catalog"
	"github.com/logroll/logroll/internal/quota"
)

// Writer streams bytes into a directory of rotated files. It is not safe
// for concurrent use; callers needing concurrency must serialize access
// externally. A writer instance assumes exclusive ownership of the
// matching files in its target directory.
type Writer struct {
	cfg       Config
	log       *slog.Logger
	hooks     Hooks
	checker   *quota.Checker
	reclaimer *quota.Reclaimer

	file     *os.File
	buf      *bufio.Writer
	name     string
	size     int64
	openedAt time.Time
	rotating bool
	closed   bool
}

var _ io.WriteCloser = (*Writer)(nil)

// New creates a Writer with no lifecycle hooks.
func New(cfg Config) (*Writer, error) {
	return NewWithHooks(cfg, NoopHooks{})
}

// NewWithHooks creates the target directory if needed, opens the first
// file and fires the FileOpened hook. If the directory already holds more
// matching files than MaxFileCount allows, the oldest are deleted.
func NewWithHooks(cfg Config, hooks Hooks) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := os.MkdirAll(cfg.TargetDir, 0755); err != nil {
		return nil, fmt.Errorf("create target dir: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	w := &Writer{
		cfg:   cfg,
		log:   log,
		hooks: hooks,
		checker: &quota.Checker{
			Dir:                cfg.TargetDir,
			Prefix:             cfg.Prefix,
			Suffix:             cfg.Suffix,
			MaxUseBytes:        cfg.MaxUseBytes,
			MaxUseOfTotal:      cfg.MaxUseOfTotal,
			Reserved:           cfg.Reserved,
			MinAvailBytes:      cfg.MinAvailBytes,
			MinAvailOfTotal:    cfg.MinAvailOfTotal,
			WarnIfAvailReached: cfg.WarnIfAvailReached,
			Log:                log,
		},
		reclaimer: &quota.Reclaimer{
			Dir:    cfg.TargetDir,
			Prefix: cfg.Prefix,
			Suffix: cfg.Suffix,
			Log:    log,
		},
	}

	if err := w.openNext(); err != nil {
		return nil, err
	}
	if err := w.hooks.FileOpened(w); err != nil {
		w.file.Close()
		return nil, err
	}
	if err := w.enforceCount(); err != nil {
		w.file.Close()
		return nil, err
	}
	return w, nil
}

// CurrentName returns the generated name of the file open for writing.
func (w *Writer) CurrentName() string { return w.name }

// CurrentPath returns the on-disk path of the file open for writing.
func (w *Writer) CurrentPath() string { return filepath.Join(w.cfg.TargetDir, w.name) }

// CurrentSize returns the bytes written to the current file since it was
// opened, including bytes still buffered.
func (w *Writer) CurrentSize() int64 { return w.size }

// OpenedAt returns when the current file was opened.
func (w *Writer) OpenedAt() time.Time { return w.openedAt }

// Write appends p to the stream. The current file is rotated first when p
// would push it past MaxFileSize or when it is older than MaxFileAge.
// When a configured limit would be violated, the oldest rotated files are
// deleted until the write fits; if reclamation is exhausted with an
// occupancy cap still violated, ErrOutOfSpace is returned, while an
// unsatisfiable availability floor only logs a warning — data is never
// silently dropped to satisfy a soft limit.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}

	if w.size+int64(len(p)) > w.cfg.MaxFileSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	if w.cfg.MaxFileAge > 0 && time.Since(w.openedAt) > w.cfg.MaxFileAge {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	if err := w.ensureSpace(int64(len(p))); err != nil {
		return 0, err
	}

	n, err := w.buf.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("append to %s: %w", w.name, err)
	}
	return n, nil
}

// Flush forces buffered bytes to the current file without rotating.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", w.name, err)
	}
	return nil
}

// Close fires the FileClosing hook, flushes buffered bytes and closes the
// current file. No rotation or cleanup runs; the rotated files stay as
// they are. The writer is unusable afterwards.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	hookErr := w.hooks.FileClosing(w)
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush %s: %w", w.name, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.name, err)
	}
	return hookErr
}

// ensureSpace loops the admission check against reclamation until the
// pending write fits or no deletable file remains.
func (w *Writer) ensureSpace(pending int64) error {
	for {
		d, err := w.checker.Check(pending)
		if err != nil {
			return err
		}
		if d.Admitted {
			return nil
		}

		rerr := w.reclaimer.DeleteOldest(w.name)
		if rerr == nil {
			continue
		}
		if errors.Is(rerr, quota.ErrOutOfSpace) {
			if d.Reason == quota.ReasonCap {
				return fmt.Errorf("occupancy cap %d exceeded with %d bytes used and nothing left to delete: %w",
					d.Limit, d.Used, ErrOutOfSpace)
			}
			w.log.Warn("could not free enough space, writing anyway",
				"avail", d.Avail, "floor", d.Floor)
			return nil
		}
		return rerr
	}
}

// rotate closes the current file and opens a new one under a fresh name.
// A failure to create the new file leaves the writer pointed at the old,
// closed file; callers must treat that as terminal for this instance.
func (w *Writer) rotate() error {
	if w.rotating {
		return ErrRotationReentered
	}
	w.rotating = true
	defer func() { w.rotating = false }()

	if err := w.hooks.FileClosing(w); err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", w.name, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.name, err)
	}
	if err := w.openNext(); err != nil {
		return err
	}
	if err := w.hooks.FileOpened(w); err != nil {
		return err
	}
	return w.enforceCount()
}

func (w *Writer) openNext() error {
	name, f, err := createFile(w.cfg.TargetDir, w.cfg.Prefix, w.cfg.Suffix)
	if err != nil {
		return err
	}
	w.file = f
	w.buf = bufio.NewWriter(f)
	w.name = name
	w.size = 0
	w.openedAt = time.Now()
	return nil
}

// createFile opens a new file named {prefix}{timestamp}{suffix} in local
// time. Two rotations within the same second would collide, so a counter
// is appended until the create succeeds.
func createFile(dir, prefix, suffix string) (string, *os.File, error) {
	stamp := time.Now().Format("2006-01-02-15-04-05")
	for n := 0; ; n++ {
		name := prefix + stamp + suffix
		if n > 0 {
			name = fmt.Sprintf("%s%s_%03d%s", prefix, stamp, n, suffix)
		}
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return name, f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, fmt.Errorf("create %s: %w", name, err)
		}
	}
}

// enforceCount deletes oldest files while more than MaxFileCount matching
// files exist. It runs after each open, so the just-opened file is in the
// count but protected from deletion.
func (w *Writer) enforceCount() error {
	if w.cfg.MaxFileCount <= 0 {
		return nil
	}
	for {
		entries, err := catalog.List(w.cfg.TargetDir, w.cfg.Prefix, w.cfg.Suffix, w.log)
		if err != nil {
			return err
		}
		if len(entries) <= w.cfg.MaxFileCount {
			return nil
		}
		if err := w.reclaimer.DeleteOldest(w.name); err != nil {
			if errors.Is(err, quota.ErrOutOfSpace) {
				w.log.Warn("file count cap cannot be enforced",
					"count", len(entries), "max", w.cfg.MaxFileCount)
				return nil
			}
			return err
		}
	}
}
