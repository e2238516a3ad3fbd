package effects

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Skyy-Development/launcher-backdrop/internal/engine"
	"github.com/Skyy-Development/launcher-backdrop/internal/render"
)

const defaultStarCount = 200

// star is one simulated entity. Positions are offsets from the screen
// center in [-1, 1]; depth shrinks toward the viewer and recycles the
// star when it reaches zero.
type star struct {
	x, y float64
	z    float64 // depth, (0, 1]

	speed      float64
	size       float64
	brightness float64

	twinklePhase float64
	twinkleSpeed float64
}

// Starfield is the classic fly-through star effect. The collection is
// allocated once per mount; stars that pass the viewer are re-rolled in
// place, never removed.
type Starfield struct {
	baseCount int
	stars     []star

	w, h    int
	profile engine.Profile
	rng     *rand.Rand
}

// NewStarfield creates an uninitialized starfield with the given base
// entity count (scaled by quality tier at Init).
func NewStarfield(baseCount int) *Starfield {
	if baseCount <= 0 {
		baseCount = defaultStarCount
	}
	return &Starfield{baseCount: baseCount}
}

// Count returns the live entity count.
func (s *Starfield) Count() int { return len(s.stars) }

func (s *Starfield) Init(w, h int, p engine.Profile, rng *rand.Rand) {
	s.w, s.h = w, h
	s.profile = p
	s.rng = rng
	s.stars = make([]star, p.ScaledCount(s.baseCount))
	for i := range s.stars {
		s.spawn(&s.stars[i], true)
	}
}

func (s *Starfield) Resize(w, h int) {
	s.w, s.h = w, h
}

// spawn re-randomizes a star in place. Initial spawns scatter depth
// across the whole range so the field does not start as a single shell.
func (s *Starfield) spawn(st *star, initial bool) {
	st.x = s.rng.Float64()*2 - 1
	st.y = s.rng.Float64()*2 - 1
	if initial {
		st.z = 0.05 + s.rng.Float64()*0.95
	} else {
		st.z = 1
	}
	st.speed = 0.0015 + s.rng.Float64()*0.0035
	st.size = 0.5 + s.rng.Float64()*1.5
	st.brightness = 0.5 + s.rng.Float64()*0.5
	st.twinklePhase = s.rng.Float64() * 2 * math.Pi
	st.twinkleSpeed = 0.01 + s.rng.Float64()*0.03
}

func (s *Starfield) Step(t engine.Tick) {
	for i := range s.stars {
		st := &s.stars[i]
		st.z -= st.speed * s.profile.SpeedScale
		if st.z <= 0 {
			s.spawn(st, false)
		}
		st.twinklePhase += st.twinkleSpeed
	}
}

func (s *Starfield) Draw(dst *render.Buffer, style engine.Style) {
	cx := float64(s.w) / 2
	cy := float64(s.h) / 2
	focal := math.Min(cx, cy)
	white := colorful.Color{R: 1, G: 1, B: 1}

	for i := range s.stars {
		st := &s.stars[i]
		scale := 1 / st.z
		px := cx + st.x*focal*scale*0.5
		py := cy + st.y*focal*scale*0.5
		if px < -4 || py < -4 || px > float64(s.w)+4 || py > float64(s.h)+4 {
			continue
		}

		twinkle := 0.5 + 0.5*math.Sin(st.twinklePhase)
		depthFade := 1 - st.z*0.6
		alpha := st.brightness * style.Opacity * twinkle * depthFade

		radius := st.size * (0.4 + 0.6*scale)
		if radius > st.size*3 {
			radius = st.size * 3
		}

		// Near stars lean toward white, far stars keep the accent tint.
		col := style.Accent.BlendRgb(white, 0.3+0.5*(1-st.z))
		if radius > 1.2 {
			dst.Glow(px, py, radius*2.5, col, alpha*0.35)
		}
		dst.FillCircle(px, py, radius, col, alpha)
	}
}

func (s *Starfield) Snapshot() engine.Effect {
	cp := *s
	cp.stars = append([]star(nil), s.stars...)
	return &cp
}

func (s *Starfield) Restore(snap engine.Effect) {
	o, ok := snap.(*Starfield)
	if !ok {
		return
	}
	s.stars = append(s.stars[:0], o.stars...)
}
