package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSession_WritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.pprof"),
		Heap:  filepath.Join(dir, "heap.pprof"),
		Trace: filepath.Join(dir, "run.trace"),
	}
	if !opts.Enabled() {
		t.Fatalf("expected options to be enabled")
	}
	s, err := Start(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second stop must be a no-op, got %v", err)
	}
	for _, path := range []string{opts.CPU, opts.Heap, opts.Trace} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", path)
		}
	}
}

func TestStart_BadPath(t *testing.T) {
	_, err := Start(Options{CPU: filepath.Join(t.TempDir(), "missing", "cpu.pprof")})
	if err == nil {
		t.Fatalf("expected an error for an unwritable path")
	}
	if (Options{}).Enabled() {
		t.Fatalf("empty options must be disabled")
	}
}
