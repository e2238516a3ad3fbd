package app

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// profiler appends per-frame section timings to a CSV file. A nil
// profiler is valid and does nothing.
type profiler struct {
	mu     sync.Mutex
	file   *os.File
	start  time.Time
	last   time.Time
	frames uint64
}

func newProfiler(path string, logger *log.Logger) *profiler {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if logger != nil {
			logger.Printf("profiler disabled: %v", err)
		}
		return nil
	}
	p := &profiler{file: f}
	fmt.Fprintln(f, "frame,section,delta_ms")
	return p
}

func (p *profiler) beginFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	p.start = now
	p.last = now
	p.frames++
}

func (p *profiler) mark(section string) {
	if p == nil {
		return
	}
	now := time.Now()
	p.write(section, now.Sub(p.last))
	p.last = now
}

func (p *profiler) endFrame() {
	if p == nil {
		return
	}
	p.write("frame_total", time.Since(p.start))
}

func (p *profiler) write(section string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return
	}
	fmt.Fprintf(p.file, "%d,%s,%.3f\n", p.frames, section, d.Seconds()*1000)
}

func (p *profiler) Close() error {
	if p == nil || p.file == nil {
		return nil
	}
	return p.file.Close()
}
