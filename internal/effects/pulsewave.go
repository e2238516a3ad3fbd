package effects

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Skyy-Development/launcher-backdrop/internal/engine"
	"github.com/Skyy-Development/launcher-backdrop/internal/render"
)

const (
	defaultWaveCount = 8
	waveRecycleScale = 1.2  // recycle radius, in units of the max viewport dimension
	pointerGrabRate  = 0.1  // probability a pointer move relocates a particle
	clickWaveResets  = 3    // waves re-originated per click
	waveBaseOpacity  = 0.55 // opacity at radius 0, decaying with distance
)

// wave is an expanding ripple ring. It recycles at 1.2x the larger
// viewport dimension: radius back to zero, fresh origin and speed.
type wave struct {
	x, y   float64
	radius float64
	speed  float64
	width  float64
	alt    bool // draws in the complementary color
}

// particle is a depth-scaled background mote drifting toward the
// viewer. Depth only drives size and alpha; position is screen-space.
type particle struct {
	x, y float64
	z    float64 // (0, 1], shrinks toward the viewer

	size     float64
	speed    float64
	phase    float64
	phaseInc float64
	alt      bool
}

// PulseWave renders expanding rings with a field of depth-scaled
// particles, alternating between the accent color and its complement.
// It is the only interactive effect: pointer motion occasionally grabs
// a particle, clicks re-originate a few waves at the click point.
type PulseWave struct {
	baseCount int
	waves     []wave
	particles []particle
	phase     float64 // silhouette wobble phase

	w, h    int
	profile engine.Profile
	rng     *rand.Rand
}

// NewPulseWave creates an uninitialized pulse-wave effect.
func NewPulseWave(baseCount int) *PulseWave {
	if baseCount <= 0 {
		baseCount = defaultWaveCount
	}
	return &PulseWave{baseCount: baseCount}
}

// Count returns the live wave count.
func (p *PulseWave) Count() int { return len(p.waves) }

// ParticleCount returns the live background particle count.
func (p *PulseWave) ParticleCount() int { return len(p.particles) }

func (p *PulseWave) Init(w, h int, prof engine.Profile, rng *rand.Rand) {
	p.w, p.h = w, h
	p.profile = prof
	p.rng = rng

	limit := p.recycleLimit()
	p.waves = make([]wave, prof.ScaledCount(p.baseCount))
	for i := range p.waves {
		wv := &p.waves[i]
		p.spawnWave(wv, -1, -1)
		// Stagger initial radii so rings do not march in lockstep.
		wv.radius = limit * float64(i) / float64(len(p.waves))
		wv.alt = i%2 == 1
	}

	p.particles = make([]particle, prof.ExtraParticles)
	for i := range p.particles {
		pt := &p.particles[i]
		p.spawnParticle(pt, true)
		pt.alt = i%2 == 1
	}
}

func (p *PulseWave) Resize(w, h int) {
	p.w, p.h = w, h
}

func (p *PulseWave) recycleLimit() float64 {
	return waveRecycleScale * math.Max(float64(p.w), float64(p.h))
}

// spawnWave re-randomizes a wave in place. Negative origin coordinates
// pick a random origin.
func (p *PulseWave) spawnWave(wv *wave, x, y float64) {
	if x < 0 {
		x = p.rng.Float64() * float64(p.w)
	}
	if y < 0 {
		y = p.rng.Float64() * float64(p.h)
	}
	wv.x, wv.y = x, y
	wv.radius = 0
	wv.speed = 0.8 + p.rng.Float64()*1.4
	wv.width = 1 + p.rng.Float64()*2
}

func (p *PulseWave) spawnParticle(pt *particle, initial bool) {
	pt.x = p.rng.Float64() * float64(p.w)
	pt.y = p.rng.Float64() * float64(p.h)
	if initial {
		pt.z = 0.05 + p.rng.Float64()*0.95
	} else {
		pt.z = 1
	}
	pt.size = 1 + p.rng.Float64()*2
	pt.speed = 0.5 + p.rng.Float64()
	pt.phase = p.rng.Float64() * 2 * math.Pi
	pt.phaseInc = 0.02 + p.rng.Float64()*0.05
}

func (p *PulseWave) Step(t engine.Tick) {
	// Pulse-wave scales motion by elapsed/16 to stay frame-rate
	// independent; the other effects advance per accepted frame.
	dt := t.Elapsed / 16
	limit := p.recycleLimit()
	p.phase += 0.0012 * t.Elapsed

	for i := range p.waves {
		wv := &p.waves[i]
		wv.radius += wv.speed * p.profile.SpeedScale * dt
		if wv.radius > limit {
			p.spawnWave(wv, -1, -1)
		}
	}

	for i := range p.particles {
		pt := &p.particles[i]
		pt.z -= 0.004 * pt.speed * p.profile.SpeedScale * dt
		pt.phase += pt.phaseInc
		pt.x += math.Sin(pt.phase) * 0.3
		if pt.z <= 0 {
			p.spawnParticle(pt, false)
		}
	}
}

func (p *PulseWave) Draw(dst *render.Buffer, style engine.Style) {
	limit := p.recycleLimit()
	segments := p.profile.CurveSegments

	for i := range p.waves {
		wv := &p.waves[i]
		opacity := waveBaseOpacity * (1 - wv.radius/limit)
		if opacity <= 0 || wv.radius < 1 {
			continue
		}
		col := style.Accent
		if wv.alt {
			col = style.Complement
		}
		width := wv.width * (1 + 0.8*style.Energy)
		p.strokeRing(dst, wv, segments, width, col, opacity*style.Opacity)
	}

	for i := range p.particles {
		pt := &p.particles[i]
		scale := 1 / (0.25 + 0.75*pt.z)
		col := style.Accent
		if pt.alt {
			col = style.Complement
		}
		alpha := (1 - pt.z) * 0.8 * style.Opacity * (0.5 + 0.5*math.Sin(pt.phase))
		dst.FillCircle(pt.x, pt.y, pt.size*scale*0.6, col, alpha)
	}
}

// strokeRing draws one wave silhouette as a chain of quadratic curves
// with a slight radial wobble, instead of a perfect circle.
func (p *PulseWave) strokeRing(dst *render.Buffer, wv *wave, segments int, width float64, col colorful.Color, alpha float64) {
	if segments < 3 {
		segments = 3
	}
	wobbleAmp := wv.radius * 0.02
	point := func(a float64) (float64, float64) {
		r := wv.radius + wobbleAmp*math.Sin(3*a+p.phase)
		return wv.x + r*math.Cos(a), wv.y + r*math.Sin(a)
	}
	step := 2 * math.Pi / float64(segments)
	for s := 0; s < segments; s++ {
		a0 := float64(s) * step
		a1 := a0 + step
		x0, y0 := point(a0)
		x1, y1 := point(a1)
		// Control point bows the segment outward through the midpoint.
		mid := a0 + step/2
		mr := wv.radius + wobbleAmp*math.Sin(3*mid+p.phase)
		cx := wv.x + mr*math.Cos(mid)*1.02
		cy := wv.y + mr*math.Sin(mid)*1.02
		dst.QuadCurve(x0, y0, cx, cy, x1, y1, 4, width, col, alpha)
	}
}

// PointerMoved occasionally relocates a random background particle to
// the pointer. Fire-and-forget on the live collection; any concurrent
// pause snapshot is deliberately left alone.
func (p *PulseWave) PointerMoved(x, y float64) {
	if len(p.particles) == 0 || p.rng.Float64() >= pointerGrabRate {
		return
	}
	pt := &p.particles[p.rng.Intn(len(p.particles))]
	pt.x, pt.y = x, y
}

// Click re-originates a small random subset of waves at the click
// point, radius zero and full opacity.
func (p *PulseWave) Click(x, y float64) {
	if len(p.waves) == 0 {
		return
	}
	n := clickWaveResets
	if n > len(p.waves) {
		n = len(p.waves)
	}
	for i := 0; i < n; i++ {
		p.spawnWave(&p.waves[p.rng.Intn(len(p.waves))], x, y)
	}
}

func (p *PulseWave) Snapshot() engine.Effect {
	cp := *p
	cp.waves = append([]wave(nil), p.waves...)
	cp.particles = append([]particle(nil), p.particles...)
	return &cp
}

func (p *PulseWave) Restore(snap engine.Effect) {
	o, ok := snap.(*PulseWave)
	if !ok {
		return
	}
	p.waves = append(p.waves[:0], o.waves...)
	p.particles = append(p.particles[:0], o.particles...)
	p.phase = o.phase
}
