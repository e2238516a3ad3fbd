package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Skyy-Development/launcher-backdrop/internal/render"
)

type stubEffect struct {
	initCalls int
	stepCalls int
	drawCalls int
	snapshots int
	restores  int

	lastProfile Profile
	lastTick    Tick
	lastStyle   Style

	pointerX, pointerY float64
	clicks             int
}

func (s *stubEffect) Init(w, h int, p Profile, rng *rand.Rand) {
	s.initCalls++
	s.lastProfile = p
}

func (s *stubEffect) Resize(w, h int) {}

func (s *stubEffect) Step(t Tick) {
	s.stepCalls++
	s.lastTick = t
}

func (s *stubEffect) Draw(dst *render.Buffer, style Style) {
	s.drawCalls++
	s.lastStyle = style
}

func (s *stubEffect) Snapshot() Effect {
	s.snapshots++
	cp := *s
	return &cp
}

func (s *stubEffect) Restore(snap Effect) { s.restores++ }

func (s *stubEffect) PointerMoved(x, y float64) { s.pointerX, s.pointerY = x, y }

func (s *stubEffect) Click(x, y float64) { s.clicks++ }

func newTestEngine(t *testing.T, tier Tier) (*Engine, *stubEffect, *fakeTime) {
	t.Helper()
	effect := &stubEffect{}
	e, err := New(effect, Config{
		Surface: render.NewBuffer(64, 48),
		Tier:    tier,
		Seed:    1,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ft := newFakeTime()
	e.now = ft.now
	e.clock.now = ft.now
	return e, effect, ft
}

var live = Signals{Focused: true, Visible: true, Enabled: true}

func TestFirstTickInitializesAndDraws(t *testing.T) {
	e, effect, _ := newTestEngine(t, TierMedium)

	if !e.Tick(live) {
		t.Fatalf("first tick should draw")
	}
	if effect.initCalls != 1 {
		t.Fatalf("initCalls=%d want=1", effect.initCalls)
	}
	if effect.drawCalls != 1 {
		t.Fatalf("drawCalls=%d want=1", effect.drawCalls)
	}
	if effect.stepCalls != 0 {
		t.Fatalf("stepCalls=%d want=0 on the mount frame", effect.stepCalls)
	}
	if e.State() != "live" {
		t.Fatalf("state=%s want=live", e.State())
	}
}

func TestInvisibleTickDoesNothing(t *testing.T) {
	e, effect, ft := newTestEngine(t, TierMedium)

	sig := live
	sig.Visible = false
	if e.Tick(sig) {
		t.Fatalf("invisible tick should not draw")
	}
	if effect.initCalls != 0 {
		t.Fatalf("invisible tick initialized the effect")
	}

	// Going invisible mid-run must not pause the clock.
	e.Tick(live)
	before := e.Effective()
	ft.advance(time.Second)
	e.Tick(sig)
	if got := e.Effective(); got <= before {
		t.Fatalf("effective time froze while invisible: %v", got)
	}
}

func TestThrottleRespectsFrameInterval(t *testing.T) {
	e, effect, ft := newTestEngine(t, TierHigh)
	e.Tick(live)

	interval := e.profile.FrameInterval()

	ft.advance(interval / 2)
	if e.Tick(live) {
		t.Fatalf("frame accepted before the interval elapsed")
	}
	if effect.stepCalls != 0 {
		t.Fatalf("stepCalls=%d want=0 for a rejected frame", effect.stepCalls)
	}

	ft.advance(interval)
	if !e.Tick(live) {
		t.Fatalf("frame rejected after the interval elapsed")
	}
	if effect.stepCalls != 1 {
		t.Fatalf("stepCalls=%d want=1", effect.stepCalls)
	}
}

func TestThrottleKeepsResidue(t *testing.T) {
	e, _, ft := newTestEngine(t, TierHigh)
	e.Tick(live)

	interval := e.profile.FrameInterval()
	overshoot := 5 * time.Millisecond

	ft.advance(interval + overshoot)
	if !e.Tick(live) {
		t.Fatalf("overshot frame rejected")
	}

	// The overshoot residue counts toward the next interval. Without the
	// residue this advance would fall short and the frame would drop.
	ft.advance(interval - overshoot)
	if !e.Tick(live) {
		t.Fatalf("residue was discarded: frame rejected")
	}
}

func TestPauseRendersExactlyOneFrame(t *testing.T) {
	e, effect, ft := newTestEngine(t, TierMedium)
	e.Tick(live)

	paused := live
	paused.Enabled = false

	ft.advance(time.Second)
	if !e.Tick(paused) {
		t.Fatalf("pause transition should draw the frozen frame")
	}
	if effect.snapshots != 1 {
		t.Fatalf("snapshots=%d want=1", effect.snapshots)
	}
	if e.State() != "paused" {
		t.Fatalf("state=%s want=paused", e.State())
	}

	for i := 0; i < 5; i++ {
		ft.advance(time.Second)
		if e.Tick(paused) {
			t.Fatalf("paused tick %d drew a frame", i)
		}
	}
	if effect.stepCalls != 0 {
		t.Fatalf("stepCalls=%d want=0 while paused", effect.stepCalls)
	}
}

func TestResumeRestoresSnapshotAndContinuesTime(t *testing.T) {
	e, effect, ft := newTestEngine(t, TierMedium)
	e.Tick(live)

	ft.advance(time.Second)
	paused := live
	paused.Enabled = false
	e.Tick(paused)
	frozen := e.Effective()

	ft.advance(time.Minute)
	if !e.Tick(live) {
		t.Fatalf("resume should draw")
	}
	if effect.restores != 1 {
		t.Fatalf("restores=%d want=1", effect.restores)
	}
	if effect.stepCalls != 1 {
		t.Fatalf("stepCalls=%d want=1 on resume", effect.stepCalls)
	}

	// The paused minute is excluded from effective time.
	if got := e.Effective(); got != frozen {
		t.Fatalf("effective=%v want=%v after resume", got, frozen)
	}

	// The resume step advances by one nominal frame, not the wall gap.
	wantElapsed := e.profile.FrameInterval().Seconds() * 1000
	if got := effect.lastTick.Elapsed; got != wantElapsed {
		t.Fatalf("resume elapsed=%v want=%v", got, wantElapsed)
	}
}

func TestUnfocusedCountsAsPause(t *testing.T) {
	e, _, ft := newTestEngine(t, TierMedium)
	e.Tick(live)

	unfocused := live
	unfocused.Focused = false
	ft.advance(100 * time.Millisecond)
	e.Tick(unfocused)
	if e.State() != "paused" {
		t.Fatalf("state=%s want=paused when unfocused", e.State())
	}

	// Force does not override a missing focus.
	unfocused.Force = true
	ft.advance(time.Second)
	if e.Tick(unfocused) {
		t.Fatalf("forced unfocused tick drew a frame")
	}
}

func TestForceOverridesDisabledSetting(t *testing.T) {
	sig := Signals{Focused: true, Visible: true, Enabled: false, Force: true}
	if !sig.ShouldAnimate() {
		t.Fatalf("force should override the disabled setting")
	}
	sig.Focused = false
	if sig.ShouldAnimate() {
		t.Fatalf("force must not override missing focus")
	}
}

func TestNilSurfaceIsSilentNoop(t *testing.T) {
	effect := &stubEffect{}
	e, err := New(effect, Config{Tier: TierMedium})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		if e.Tick(live) {
			t.Fatalf("nil-surface tick drew a frame")
		}
	}
	if effect.initCalls != 0 {
		t.Fatalf("nil-surface engine initialized the effect")
	}
}

func TestSetTierRemounts(t *testing.T) {
	e, effect, ft := newTestEngine(t, TierHigh)
	e.Tick(live)

	e.SetTier(TierLow)
	if e.State() != "uninitialized" {
		t.Fatalf("state=%s want=uninitialized after tier switch", e.State())
	}

	ft.advance(time.Second)
	if !e.Tick(live) {
		t.Fatalf("remount tick should draw")
	}
	if effect.initCalls != 2 {
		t.Fatalf("initCalls=%d want=2 after remount", effect.initCalls)
	}
	if effect.lastProfile.CountScale != TierLow.Profile().CountScale {
		t.Fatalf("remount used the old profile")
	}

	// Same tier again is a no-op.
	e.SetTier(TierLow)
	if e.State() != "live" {
		t.Fatalf("state=%s want=live after same-tier switch", e.State())
	}
}

func TestSetAccentRejectsBadHex(t *testing.T) {
	e, _, _ := newTestEngine(t, TierMedium)
	if err := e.SetAccent("not-a-color"); err == nil {
		t.Fatalf("expected error for malformed hex")
	}
	if err := e.SetAccent("#ff8800"); err != nil {
		t.Fatalf("SetAccent: %v", err)
	}
	c := e.Accent()
	if c.R < 0.99 || c.G < 0.52 || c.G > 0.55 || c.B > 0.01 {
		t.Fatalf("accent rgb=%v %v %v", c.R, c.G, c.B)
	}
}

func TestSetEnergyClamps(t *testing.T) {
	e, effect, _ := newTestEngine(t, TierMedium)
	e.SetEnergy(2.5)
	e.Tick(live)
	if effect.lastStyle.Energy != 1 {
		t.Fatalf("energy=%v want=1 (clamped)", effect.lastStyle.Energy)
	}
	e.SetEnergy(-1)
	if e.energy != 0 {
		t.Fatalf("energy=%v want=0 (clamped)", e.energy)
	}
}

func TestPointerForwarding(t *testing.T) {
	e, effect, _ := newTestEngine(t, TierMedium)

	// Ignored before the first tick mounts the effect.
	e.PointerMoved(5, 5)
	e.Click(5, 5)
	if effect.clicks != 0 {
		t.Fatalf("click forwarded before mount")
	}

	e.Tick(live)
	e.PointerMoved(10, 20)
	e.Click(1, 2)
	if effect.pointerX != 10 || effect.pointerY != 20 {
		t.Fatalf("pointer=(%v,%v) want=(10,20)", effect.pointerX, effect.pointerY)
	}
	if effect.clicks != 1 {
		t.Fatalf("clicks=%d want=1", effect.clicks)
	}
}
