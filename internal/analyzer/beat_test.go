package analyzer

import (
	"math"
	"testing"
	"time"
)

type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) now() time.Time { return f.current }

func (f *fakeClock) advance(d time.Duration) { f.current = f.current.Add(d) }

func newTestDetector() (*BeatDetector, *fakeClock) {
	fc := newFakeClock()
	d := NewBeatDetector()
	d.now = fc.now
	return d, fc
}

// feed pushes quiet baseline energy so the rolling mean settles.
func feed(d *BeatDetector, fc *fakeClock, energy float64, n int) {
	for i := 0; i < n; i++ {
		fc.advance(20 * time.Millisecond)
		d.Detect(energy)
	}
}

func TestBeatFiresOnSpike(t *testing.T) {
	d, fc := newTestDetector()
	feed(d, fc, 0.1, beatHistorySize)

	fc.advance(200 * time.Millisecond)
	beat, strength := d.Detect(0.5)
	if !beat {
		t.Fatalf("spike did not fire a beat")
	}
	if strength <= 0 || strength > 1 {
		t.Fatalf("strength=%v want in (0, 1]", strength)
	}
}

func TestBeatStrengthCapsAtOne(t *testing.T) {
	d, fc := newTestDetector()
	feed(d, fc, 0.01, beatHistorySize)

	fc.advance(200 * time.Millisecond)
	if _, strength := d.Detect(10); strength != 1 {
		t.Fatalf("strength=%v want=1", strength)
	}
}

func TestBeatHoldTime(t *testing.T) {
	d, fc := newTestDetector()
	feed(d, fc, 0.1, beatHistorySize)

	fc.advance(200 * time.Millisecond)
	if beat, _ := d.Detect(2); !beat {
		t.Fatalf("first spike should fire")
	}

	// Inside the hold window: suppressed no matter how loud.
	fc.advance(50 * time.Millisecond)
	if beat, _ := d.Detect(3); beat {
		t.Fatalf("beat fired inside the hold window")
	}

	// Past the hold window: fires again.
	fc.advance(150 * time.Millisecond)
	if beat, _ := d.Detect(4); !beat {
		t.Fatalf("beat suppressed past the hold window")
	}
}

func TestBeatStrengthDecays(t *testing.T) {
	d, fc := newTestDetector()
	feed(d, fc, 0.1, beatHistorySize)

	fc.advance(200 * time.Millisecond)
	_, s0 := d.Detect(0.5)

	fc.advance(20 * time.Millisecond)
	_, s1 := d.Detect(0.1)
	if want := s0 * beatDecay; math.Abs(s1-want) > 1e-9 {
		t.Fatalf("strength=%v want=%v after one decay step", s1, want)
	}

	for i := 0; i < 500; i++ {
		fc.advance(20 * time.Millisecond)
		// Baseline energy keeps the mean up so no new beat fires.
		_, s1 = d.Detect(0.1)
	}
	if s1 > 0.001 {
		t.Fatalf("strength=%v did not decay toward zero", s1)
	}
}

func TestSilenceNeverBeats(t *testing.T) {
	d, fc := newTestDetector()
	for i := 0; i < 100; i++ {
		fc.advance(20 * time.Millisecond)
		if beat, _ := d.Detect(0); beat {
			t.Fatalf("beat fired on silence at step %d", i)
		}
	}
}
