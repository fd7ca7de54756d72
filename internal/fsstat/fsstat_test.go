package fsstat

import (
	"path/filepath"
	"testing"
)

func TestProbe(t *testing.T) {
	st, err := Probe(t.TempDir())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if st.TotalSpace == 0 {
		t.Error("expected non-zero total space")
	}
	if st.AllocationGranularity == 0 {
		t.Error("expected non-zero allocation granularity")
	}
	if st.AvailableSpace > st.TotalSpace {
		t.Errorf("available space %d exceeds total %d", st.AvailableSpace, st.TotalSpace)
	}
	if st.AvailableSpace > st.FreeSpace {
		t.Errorf("available space %d exceeds free %d", st.AvailableSpace, st.FreeSpace)
	}
}

func TestProbeMissingDir(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestProbeNotCached(t *testing.T) {
	dir := t.TempDir()
	a, err := Probe(dir)
	if err != nil {
		t.Fatalf("first probe failed: %v", err)
	}
	b, err := Probe(dir)
	if err != nil {
		t.Fatalf("second probe failed: %v", err)
	}
	if a.TotalSpace != b.TotalSpace {
		t.Errorf("total space changed between probes: %d vs %d", a.TotalSpace, b.TotalSpace)
	}
}
