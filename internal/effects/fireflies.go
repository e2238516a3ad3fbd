package effects

import (
	"math"
	"math/rand"

	"github.com/Skyy-Development/launcher-backdrop/internal/engine"
	"github.com/Skyy-Development/launcher-backdrop/internal/render"
)

const (
	defaultFireflyCount = 48
	fireflyMargin       = 24.0
)

// firefly wanders at a heading angle and pulses its glow. Fireflies
// never respawn: hitting a screen edge clamps the position and mirrors
// the heading instead.
type firefly struct {
	x, y  float64
	angle float64
	speed float64

	size       float64
	brightness float64

	pulsePhase float64
	pulseSpeed float64
	wanderSeed float64
}

// Fireflies is the drifting glow-mote effect.
type Fireflies struct {
	baseCount int
	flies     []firefly

	w, h    int
	profile engine.Profile
	rng     *rand.Rand
}

// NewFireflies creates an uninitialized firefly field.
func NewFireflies(baseCount int) *Fireflies {
	if baseCount <= 0 {
		baseCount = defaultFireflyCount
	}
	return &Fireflies{baseCount: baseCount}
}

// Count returns the live entity count.
func (f *Fireflies) Count() int { return len(f.flies) }

func (f *Fireflies) Init(w, h int, p engine.Profile, rng *rand.Rand) {
	f.w, f.h = w, h
	f.profile = p
	f.rng = rng
	f.flies = make([]firefly, p.ScaledCount(f.baseCount))
	for i := range f.flies {
		fl := &f.flies[i]
		fl.x = fireflyMargin + rng.Float64()*(float64(w)-2*fireflyMargin)
		fl.y = fireflyMargin + rng.Float64()*(float64(h)-2*fireflyMargin)
		fl.angle = rng.Float64() * 2 * math.Pi
		fl.speed = 0.3 + rng.Float64()*0.7
		fl.size = 1 + rng.Float64()*2
		fl.brightness = 0.5 + rng.Float64()*0.5
		fl.pulsePhase = rng.Float64() * 2 * math.Pi
		fl.pulseSpeed = 0.02 + rng.Float64()*0.04
		fl.wanderSeed = rng.Float64() * 2 * math.Pi
	}
}

func (f *Fireflies) Resize(w, h int) {
	f.w, f.h = w, h
}

func (f *Fireflies) Step(t engine.Tick) {
	maxX := float64(f.w) - fireflyMargin
	maxY := float64(f.h) - fireflyMargin
	for i := range f.flies {
		fl := &f.flies[i]

		// Gentle deterministic heading wander keeps paths organic.
		fl.angle += 0.02 * math.Sin(t.Effective*0.0007+fl.wanderSeed)

		v := fl.speed * f.profile.SpeedScale
		fl.x += math.Cos(fl.angle) * v
		fl.y += math.Sin(fl.angle) * v

		// Edge reflection: clamp to the margin, mirror the heading.
		if fl.x < fireflyMargin {
			fl.x = fireflyMargin
			fl.angle = math.Pi - fl.angle
		} else if fl.x > maxX {
			fl.x = maxX
			fl.angle = math.Pi - fl.angle
		}
		if fl.y < fireflyMargin {
			fl.y = fireflyMargin
			fl.angle = -fl.angle
		} else if fl.y > maxY {
			fl.y = maxY
			fl.angle = -fl.angle
		}

		fl.pulsePhase += fl.pulseSpeed
	}
}

func (f *Fireflies) Draw(dst *render.Buffer, style engine.Style) {
	boost := 1 + 0.4*style.Energy
	for i := range f.flies {
		fl := &f.flies[i]
		pulse := 0.5 + 0.5*math.Sin(fl.pulsePhase)
		alpha := fl.brightness * style.Opacity * pulse * boost
		if alpha > 1 {
			alpha = 1
		}

		dst.Glow(fl.x, fl.y, fl.size*4, style.Accent, alpha*0.5)
		dst.FillCircle(fl.x, fl.y, fl.size, style.Accent, alpha)
	}
}

func (f *Fireflies) Snapshot() engine.Effect {
	cp := *f
	cp.flies = append([]firefly(nil), f.flies...)
	return &cp
}

func (f *Fireflies) Restore(snap engine.Effect) {
	o, ok := snap.(*Fireflies)
	if !ok {
		return
	}
	f.flies = append(f.flies[:0], o.flies...)
}
