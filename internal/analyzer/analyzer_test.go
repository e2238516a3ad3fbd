package analyzer

import (
	"errors"
	"math"
	"testing"
)

type fakeSource struct {
	samples  []float32
	startErr error

	starts int
	closes int
}

func (f *fakeSource) Start() error {
	f.starts++
	return f.startErr
}

func (f *fakeSource) Samples() []float32 { return f.samples }

func (f *fakeSource) Close() error {
	f.closes++
	return nil
}

// sineSamples generates a full-scale tone at the given bin frequency.
func sineSamples(bin int) []float32 {
	out := make([]float32, fftSize)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * float64(bin) * float64(i) / fftSize))
	}
	return out
}

func TestBandEdges(t *testing.T) {
	cases := map[int][2]int{
		512:  {25, 204},
		1024: {51, 409},
	}
	for bins, want := range cases {
		bassEnd, midEnd := bandEdges(bins)
		if bassEnd != want[0] || midEnd != want[1] {
			t.Fatalf("bandEdges(%d)=(%d, %d) want=(%d, %d)", bins, bassEnd, midEnd, want[0], want[1])
		}
	}

	// Tiny bin counts must still produce non-empty bands.
	bassEnd, midEnd := bandEdges(4)
	if bassEnd < 1 || midEnd <= bassEnd || midEnd > 4 {
		t.Fatalf("bandEdges(4)=(%d, %d) degenerate", bassEnd, midEnd)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	src := &fakeSource{}
	a := New(src)

	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := a.Initialize(); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if src.starts != 1 {
		t.Fatalf("starts=%d want=1", src.starts)
	}
}

func TestInitializeFailureReleasesSource(t *testing.T) {
	src := &fakeSource{startErr: errors.New("no device")}
	a := New(src)

	if err := a.Initialize(); err == nil {
		t.Fatalf("expected initialize error")
	}
	if src.closes != 1 {
		t.Fatalf("closes=%d want=1 after failed start", src.closes)
	}
	if a.Data() != nil {
		t.Fatalf("Data should be nil after failed initialize")
	}
}

func TestSetEnabledLifecycle(t *testing.T) {
	src := &fakeSource{samples: sineSamples(4)}
	a := New(src)

	// Disabled before any initialization: nothing to do.
	if err := a.SetEnabled(false); err != nil {
		t.Fatalf("SetEnabled(false): %v", err)
	}
	if a.Data() != nil {
		t.Fatalf("Data should be nil while disabled")
	}

	if err := a.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled(true): %v", err)
	}
	if err := a.SetEnabled(true); err != nil {
		t.Fatalf("repeated enable: %v", err)
	}
	if src.starts != 1 {
		t.Fatalf("starts=%d want=1", src.starts)
	}
	if a.Data() == nil {
		t.Fatalf("Data nil while enabled")
	}

	if err := a.SetEnabled(false); err != nil {
		t.Fatalf("SetEnabled(false): %v", err)
	}
	if src.closes != 1 {
		t.Fatalf("closes=%d want=1 after disable", src.closes)
	}
	if a.Data() != nil {
		t.Fatalf("Data should be nil after disable")
	}

	// Re-enable acquires the source again from scratch.
	if err := a.SetEnabled(true); err != nil {
		t.Fatalf("re-enable: %v", err)
	}
	if src.starts != 2 {
		t.Fatalf("starts=%d want=2 after re-enable", src.starts)
	}
}

func TestCloseNeverInitialized(t *testing.T) {
	a := New(&fakeSource{})
	if err := a.Close(); err != nil {
		t.Fatalf("Close on fresh analyzer: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("double Close: %v", err)
	}
}

func TestDataBassTone(t *testing.T) {
	src := &fakeSource{samples: sineSamples(4)}
	a := New(src)
	if err := a.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	// Several polls let the spectral smoothing converge on the tone.
	var d *Data
	for i := 0; i < 50; i++ {
		d = a.Data()
	}
	if d == nil {
		t.Fatalf("Data returned nil")
	}
	if len(d.Spectrum) != binCount {
		t.Fatalf("spectrum length=%d want=%d", len(d.Spectrum), binCount)
	}

	// Bin 4 sits deep in the bass band.
	if d.Bass <= d.Mid || d.Bass <= d.Treble {
		t.Fatalf("bass tone not dominant: bass=%v mid=%v treble=%v", d.Bass, d.Mid, d.Treble)
	}
	if d.Volume <= 0 {
		t.Fatalf("volume=%v want > 0", d.Volume)
	}
}

func TestDataTrebleTone(t *testing.T) {
	src := &fakeSource{samples: sineSamples(800)}
	a := New(src)
	if err := a.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	var d *Data
	for i := 0; i < 50; i++ {
		d = a.Data()
	}
	if d.Treble <= d.Bass || d.Treble <= d.Mid {
		t.Fatalf("treble tone not dominant: bass=%v mid=%v treble=%v", d.Bass, d.Mid, d.Treble)
	}
}

func TestDataSnapshotIsImmutable(t *testing.T) {
	src := &fakeSource{samples: sineSamples(4)}
	a := New(src)
	if err := a.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}

	d1 := a.Data()
	peak := d1.Spectrum[4]
	a.Data() // internal state moves on
	if d1.Spectrum[4] != peak {
		t.Fatalf("earlier snapshot mutated by a later poll")
	}
}

func TestShortSampleWindowIsZeroPadded(t *testing.T) {
	src := &fakeSource{samples: sineSamples(4)[:100]}
	a := New(src)
	if err := a.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	d := a.Data()
	if d == nil {
		t.Fatalf("Data nil for short sample window")
	}
	for i, v := range d.Spectrum {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("spectrum[%d]=%v not finite", i, v)
		}
	}
}
