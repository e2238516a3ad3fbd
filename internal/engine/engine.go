package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/Skyy-Development/launcher-backdrop/internal/render"
)

// Tick carries per-frame timing and surface geometry into an effect's
// simulation step.
type Tick struct {
	Effective float64 // effective animation time, milliseconds
	Elapsed   float64 // wall time since the last accepted frame, milliseconds
	Width     int
	Height    int
}

// Style is the per-frame visual context handed to an effect's draw pass.
type Style struct {
	Accent     colorful.Color
	Complement colorful.Color
	Opacity    float64 // global opacity envelope, 0..1
	Energy     float64 // audio-reactive boost, 0 when idle
}

// Effect is the strategy a visual effect plugs into the engine: an
// entity factory, a per-frame step, and a draw pass. Snapshot must be a
// structural deep copy of the entity collection; Restore replaces the
// live collection with a previously taken snapshot.
type Effect interface {
	Init(w, h int, p Profile, rng *rand.Rand)
	Resize(w, h int)
	Step(t Tick)
	Draw(dst *render.Buffer, style Style)
	Snapshot() Effect
	Restore(snap Effect)
}

// Interactive is implemented by effects that react to pointer input.
type Interactive interface {
	PointerMoved(x, y float64)
	Click(x, y float64)
}

// Signals are the externally supplied conditions the engine reads on
// every frame callback.
type Signals struct {
	Focused bool // window has focus
	Visible bool // surface intersects the viewport
	Enabled bool // user's background-animation setting
	Force   bool // explicit force-enable override
}

// ShouldAnimate reports whether simulation time may advance.
func (s Signals) ShouldAnimate() bool {
	return s.Focused && (s.Force || s.Enabled)
}

type state int

const (
	stateUninitialized state = iota
	stateLive
	statePaused
)

func (s state) String() string {
	switch s {
	case stateLive:
		return "live"
	case statePaused:
		return "paused"
	default:
		return "uninitialized"
	}
}

const fadeInSeconds = 0.6

// Engine owns the frame-scheduling policy for one mounted effect:
// tier-based throttling, visibility gating, and pause/resume
// snapshotting. It is driven by a host calling Tick once per frame
// callback; the host presents the surface whenever Tick reports a draw.
type Engine struct {
	now func() time.Time

	surface *render.Buffer
	effect  Effect
	rng     *rand.Rand

	tier    Tier
	profile Profile

	accent     colorful.Color
	complement colorful.Color

	clock         *Clock
	state         state
	snapshot      Effect
	pauseRendered bool
	lastFrame     time.Time

	fade    *gween.Tween
	opacity float64
	energy  float64

	width, height int
	frames        uint64
}

// Config configures a new Engine.
type Config struct {
	Surface *render.Buffer // nil surface makes the engine a silent no-op
	Tier    Tier
	Accent  string // hex accent color, e.g. "#00ddb3"
	Seed    int64  // 0 means time-seeded
}

// New creates an engine for the given effect.
func New(effect Effect, cfg Config) (*Engine, error) {
	if effect == nil {
		return nil, fmt.Errorf("nil effect")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e := &Engine{
		now:     time.Now,
		surface: cfg.Surface,
		effect:  effect,
		rng:     rand.New(rand.NewSource(seed)),
		tier:    cfg.Tier,
		profile: cfg.Tier.Profile(),
		clock:   NewClock(),
		opacity: 1,
	}
	if cfg.Surface != nil {
		e.width, e.height = cfg.Surface.Size()
	}
	accent := cfg.Accent
	if accent == "" {
		accent = "#00ddb3"
	}
	if err := e.SetAccent(accent); err != nil {
		return nil, err
	}
	return e, nil
}

// SetAccent updates the theme accent color. The complement is the
// per-component inverse, used by effects that alternate two colors.
func (e *Engine) SetAccent(hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("accent color: %w", err)
	}
	e.accent = c
	e.complement = colorful.Color{R: 1 - c.R, G: 1 - c.G, B: 1 - c.B}
	return nil
}

// Accent returns the current accent color.
func (e *Engine) Accent() colorful.Color { return e.accent }

// Tier returns the active quality tier.
func (e *Engine) Tier() Tier { return e.tier }

// SetTier switches the quality tier. Entity counts are fixed per mount,
// so this remounts the effect: fresh entities, fresh clock.
func (e *Engine) SetTier(t Tier) {
	if t == e.tier && e.state != stateUninitialized {
		return
	}
	e.tier = t
	e.profile = t.Profile()
	clock := NewClock()
	clock.now = e.now
	e.clock = clock
	e.state = stateUninitialized
	e.snapshot = nil
	e.lastFrame = time.Time{}
}

// Resize re-derives surface geometry without resetting entity state.
func (e *Engine) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	e.width, e.height = w, h
	if e.surface != nil {
		e.surface.Resize(w, h)
	}
	if e.state != stateUninitialized {
		e.effect.Resize(w, h)
	}
}

// SetEnergy feeds the audio-reactive boost into the next draw passes.
// Zero means no modulation; values are clamped to [0, 1].
func (e *Engine) SetEnergy(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.energy = v
}

// State returns a short name for the controller state.
func (e *Engine) State() string { return e.state.String() }

// Effective returns the current effective animation time.
func (e *Engine) Effective() time.Duration { return e.clock.Effective() }

// Frames returns the number of frames drawn since mount.
func (e *Engine) Frames() uint64 { return e.frames }

// PointerMoved forwards pointer motion to an interactive effect. The
// mutation lands on the live collection and deliberately ignores any
// pause snapshot.
func (e *Engine) PointerMoved(x, y float64) {
	if e.state == stateUninitialized {
		return
	}
	if it, ok := e.effect.(Interactive); ok {
		it.PointerMoved(x, y)
	}
}

// Click forwards a click to an interactive effect.
func (e *Engine) Click(x, y float64) {
	if e.state == stateUninitialized {
		return
	}
	if it, ok := e.effect.(Interactive); ok {
		it.Click(x, y)
	}
}

// Tick is the per-frame callback. It decides whether to skip, render a
// frozen snapshot, or advance the simulation, and reports whether the
// surface holds a new frame the host should present. The host keeps
// calling Tick regardless of the return value; that is what keeps the
// loop alive through invisibility and pause.
func (e *Engine) Tick(sig Signals) bool {
	if e.surface == nil {
		// No drawing surface. Background decoration degrades to nothing.
		return false
	}

	// Visibility gate: no drawing, no stepping, no pause accounting.
	// Effective time keeps running underneath; see the design notes.
	if !sig.Visible {
		return false
	}

	now := e.now()

	if e.state == stateUninitialized {
		e.clock.Start()
		e.effect.Init(e.width, e.height, e.profile, e.rng)
		e.state = stateLive
		e.fade = gween.New(0, 1, fadeInSeconds, ease.OutQuad)
		e.opacity = 0
		e.lastFrame = now
		e.advanceFade(0)
		e.draw(e.tick(0))
		return true
	}

	animate := sig.ShouldAnimate()

	if e.state == statePaused {
		if !animate {
			if e.pauseRendered {
				return false
			}
			e.draw(e.tick(0))
			e.pauseRendered = true
			return true
		}
		// Resume: fold the pause into the clock and discard anything
		// that happened to the live collection since the snapshot.
		e.clock.Resume()
		e.effect.Restore(e.snapshot)
		e.snapshot = nil
		e.state = stateLive
		e.lastFrame = now
		step := e.tick(e.profile.FrameInterval().Seconds() * 1000)
		e.advanceFade(step.Elapsed / 1000)
		e.effect.Step(step)
		e.draw(step)
		return true
	}

	// LIVE
	if !animate {
		e.clock.Pause()
		e.snapshot = e.effect.Snapshot()
		e.state = statePaused
		e.draw(e.tick(0))
		e.pauseRendered = true
		return true
	}

	elapsed := now.Sub(e.lastFrame)
	interval := e.profile.FrameInterval()
	if elapsed < interval {
		return false
	}
	// Anti-drift: keep the residue instead of snapping to now.
	e.lastFrame = now.Add(-(elapsed % interval))

	step := e.tick(float64(elapsed) / float64(time.Millisecond))
	e.advanceFade(step.Elapsed / 1000)
	e.effect.Step(step)
	e.draw(step)
	return true
}

func (e *Engine) tick(elapsedMs float64) Tick {
	return Tick{
		Effective: float64(e.clock.Effective()) / float64(time.Millisecond),
		Elapsed:   elapsedMs,
		Width:     e.width,
		Height:    e.height,
	}
}

func (e *Engine) advanceFade(dt float64) {
	if e.fade == nil {
		return
	}
	v, done := e.fade.Update(float32(dt))
	e.opacity = float64(v)
	if done {
		e.fade = nil
		e.opacity = 1
	}
}

func (e *Engine) draw(t Tick) {
	e.surface.Clear(backdropColor(e.accent))
	e.effect.Draw(e.surface, Style{
		Accent:     e.accent,
		Complement: e.complement,
		Opacity:    e.opacity,
		Energy:     e.energy,
	})
	e.frames++
}

// backdropColor derives a near-black background tinted by the accent.
func backdropColor(accent colorful.Color) colorful.Color {
	return colorful.Color{R: accent.R * 0.06, G: accent.G * 0.06, B: accent.B * 0.08}
}
