package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProfilerWritesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.csv")
	p := newProfiler(path, nil)
	if p == nil {
		t.Fatalf("profiler not created")
	}

	p.beginFrame()
	p.mark("tick")
	p.mark("present")
	p.endFrame()
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "frame,section,delta_ms\n") {
		t.Fatalf("missing header: %q", out)
	}
	for _, section := range []string{"1,tick,", "1,present,", "1,frame_total,"} {
		if !strings.Contains(out, section) {
			t.Fatalf("missing %q in %q", section, out)
		}
	}
}

func TestNilProfilerIsNoop(t *testing.T) {
	var p *profiler
	p.beginFrame()
	p.mark("tick")
	p.endFrame()
	if err := p.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}

	if got := newProfiler("", nil); got != nil {
		t.Fatalf("empty path should disable the profiler")
	}
}
