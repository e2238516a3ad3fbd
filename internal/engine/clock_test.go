package engine

import (
	"testing"
	"time"
)

// fakeTime is a manually advanced time source.
type fakeTime struct {
	current time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeTime) now() time.Time { return f.current }

func (f *fakeTime) advance(d time.Duration) { f.current = f.current.Add(d) }

func TestClockEffectiveExcludesPause(t *testing.T) {
	ft := newFakeTime()
	c := &Clock{now: ft.now}

	c.Start()
	ft.advance(300 * time.Millisecond)
	if got := c.Effective(); got != 300*time.Millisecond {
		t.Fatalf("effective=%v want=300ms", got)
	}

	c.Pause()
	ft.advance(5 * time.Second)
	if got := c.Effective(); got != 300*time.Millisecond {
		t.Fatalf("effective while paused=%v want=300ms", got)
	}

	c.Resume()
	if got := c.Effective(); got != 300*time.Millisecond {
		t.Fatalf("effective after resume=%v want=300ms", got)
	}
	if got := c.TotalPaused(); got != 5*time.Second {
		t.Fatalf("totalPaused=%v want=5s", got)
	}

	ft.advance(200 * time.Millisecond)
	if got := c.Effective(); got != 500*time.Millisecond {
		t.Fatalf("effective=%v want=500ms", got)
	}
}

func TestClockRepeatedPauseAccumulates(t *testing.T) {
	ft := newFakeTime()
	c := &Clock{now: ft.now}
	c.Start()

	for i := 0; i < 3; i++ {
		ft.advance(100 * time.Millisecond)
		c.Pause()
		ft.advance(time.Second)
		c.Resume()
	}

	if got := c.Effective(); got != 300*time.Millisecond {
		t.Fatalf("effective=%v want=300ms", got)
	}
	if got := c.TotalPaused(); got != 3*time.Second {
		t.Fatalf("totalPaused=%v want=3s", got)
	}
}

func TestClockPauseIsIdempotent(t *testing.T) {
	ft := newFakeTime()
	c := &Clock{now: ft.now}
	c.Start()
	ft.advance(time.Second)

	c.Pause()
	frozen := c.Effective()
	ft.advance(time.Second)
	c.Pause() // second pause must not move the frozen value
	if got := c.Effective(); got != frozen {
		t.Fatalf("effective=%v want=%v after double pause", got, frozen)
	}

	c.Resume()
	c.Resume() // no-op
	if got := c.TotalPaused(); got != time.Second {
		t.Fatalf("totalPaused=%v want=1s", got)
	}
}

func TestClockBeforeStart(t *testing.T) {
	ft := newFakeTime()
	c := &Clock{now: ft.now}

	if c.Started() {
		t.Fatalf("clock started before Start")
	}
	if got := c.Effective(); got != 0 {
		t.Fatalf("effective=%v want=0 before start", got)
	}
	c.Pause() // must be a no-op
	if c.Paused() {
		t.Fatalf("pause before start should be ignored")
	}
}

func TestClockStartIsIdempotent(t *testing.T) {
	ft := newFakeTime()
	c := &Clock{now: ft.now}
	c.Start()
	ft.advance(time.Second)
	c.Start() // must not reset the origin
	if got := c.Effective(); got != time.Second {
		t.Fatalf("effective=%v want=1s", got)
	}
}
