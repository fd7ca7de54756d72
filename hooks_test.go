package logroll

import (
	"errors"
	"testing"
)

type recordingHooks struct {
	opened []string
	closed []string
}

func (h *recordingHooks) FileOpened(w *Writer) error {
	h.opened = append(h.opened, w.CurrentName())
	return nil
}

func (h *recordingHooks) FileClosing(w *Writer) error {
	h.closed = append(h.closed, w.CurrentName())
	return nil
}

func TestHooksObserveLifecycle(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.MaxFileSize = 4

	hooks := &recordingHooks{}
	w, err := NewWithHooks(cfg, hooks)
	if err != nil {
		t.Fatalf("NewWithHooks failed: %v", err)
	}

	if len(hooks.opened) != 1 {
		t.Fatalf("expected FileOpened for the first file, got %d calls", len(hooks.opened))
	}
	first := hooks.opened[0]

	if _, err := w.Write([]byte("aaaaa")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// One rotation plus teardown: opened twice, closed twice, and the
	// first close names the first file.
	if len(hooks.opened) != 2 {
		t.Errorf("expected 2 FileOpened calls, got %d", len(hooks.opened))
	}
	if len(hooks.closed) != 2 {
		t.Errorf("expected 2 FileClosing calls, got %d", len(hooks.closed))
	}
	if hooks.closed[0] != first {
		t.Errorf("expected first FileClosing for %q, got %q", first, hooks.closed[0])
	}
	if hooks.closed[1] != hooks.opened[1] {
		t.Errorf("expected final FileClosing for the current file %q, got %q", hooks.opened[1], hooks.closed[1])
	}
}

type failingCloseHooks struct {
	NoopHooks
	err error
}

func (h *failingCloseHooks) FileClosing(*Writer) error { return h.err }

func TestHookErrorPropagates(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.MaxFileSize = 4

	hookErr := errors.New("hook refused")
	w, err := NewWithHooks(cfg, &failingCloseHooks{err: hookErr})
	if err != nil {
		t.Fatalf("NewWithHooks failed: %v", err)
	}

	if _, err := w.Write([]byte("aaaaa")); !errors.Is(err, hookErr) {
		t.Errorf("expected hook error from rotating write, got %v", err)
	}
}

type failingOpenHooks struct {
	NoopHooks
	err error
}

func (h *failingOpenHooks) FileOpened(*Writer) error { return h.err }

func TestHookOpenErrorFailsConstruction(t *testing.T) {
	hookErr := errors.New("open hook refused")
	if _, err := NewWithHooks(testConfig(t.TempDir()), &failingOpenHooks{err: hookErr}); !errors.Is(err, hookErr) {
		t.Errorf("expected construction to fail with hook error, got %v", err)
	}
}

type reenteringHooks struct {
	NoopHooks
}

func (h *reenteringHooks) FileClosing(w *Writer) error {
	// Writing more than MaxFileSize from inside the hook would trigger a
	// nested rotation.
	_, err := w.Write([]byte("aaaaa"))
	return err
}

func TestNestedRotationFailsFast(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.MaxFileSize = 4

	w, err := NewWithHooks(cfg, &reenteringHooks{})
	if err != nil {
		t.Fatalf("NewWithHooks failed: %v", err)
	}

	if _, err := w.Write([]byte("bbbbb")); !errors.Is(err, ErrRotationReentered) {
		t.Errorf("expected ErrRotationReentered, got %v", err)
	}
}
