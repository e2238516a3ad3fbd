package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Buffer is a software RGBA framebuffer the effects rasterize into. It
// plays the role of the launcher's 2D canvas context: cleared once per
// frame, then drawn with alpha-blended circles, lines and curves, and
// finally handed to a sink (terminal or SDL window) for presentation.
type Buffer struct {
	w, h int
	pix  []uint8 // RGBA, w*h*4
}

// NewBuffer allocates a framebuffer. Dimensions are clamped to 1x1.
func NewBuffer(w, h int) *Buffer {
	b := &Buffer{}
	b.Resize(w, h)
	return b
}

// Size returns the buffer dimensions in pixels.
func (b *Buffer) Size() (int, int) { return b.w, b.h }

// Pix exposes the raw RGBA pixels for presentation sinks.
func (b *Buffer) Pix() []uint8 { return b.pix }

// Resize reallocates the pixel store. Content is not preserved; the
// next frame repaints everything anyway.
func (b *Buffer) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w == b.w && h == b.h && b.pix != nil {
		return
	}
	b.w, b.h = w, h
	b.pix = make([]uint8, w*h*4)
}

// Clear fills the whole buffer with an opaque color.
func (b *Buffer) Clear(c colorful.Color) {
	r := uint8(clamp01(c.R) * 255)
	g := uint8(clamp01(c.G) * 255)
	bl := uint8(clamp01(c.B) * 255)
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i] = r
		b.pix[i+1] = g
		b.pix[i+2] = bl
		b.pix[i+3] = 255
	}
}

// blend composites a color over one pixel with source-over alpha.
func (b *Buffer) blend(x, y int, c colorful.Color, alpha float64) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h || alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	i := (y*b.w + x) * 4
	inv := 1 - alpha
	b.pix[i] = uint8(clamp01(c.R)*255*alpha + float64(b.pix[i])*inv)
	b.pix[i+1] = uint8(clamp01(c.G)*255*alpha + float64(b.pix[i+1])*inv)
	b.pix[i+2] = uint8(clamp01(c.B)*255*alpha + float64(b.pix[i+2])*inv)
	b.pix[i+3] = 255
}

// FillCircle draws a filled circle with a soft one-pixel edge.
func (b *Buffer) FillCircle(cx, cy, r float64, c colorful.Color, alpha float64) {
	if r <= 0 || alpha <= 0 {
		return
	}
	x0 := int(math.Floor(cx - r - 1))
	x1 := int(math.Ceil(cx + r + 1))
	y0 := int(math.Floor(cy - r - 1))
	y1 := int(math.Ceil(cy + r + 1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if d > r+1 {
				continue
			}
			a := alpha
			if d > r {
				a *= r + 1 - d // edge antialiasing
			}
			b.blend(x, y, c, a)
		}
	}
}

// Glow draws a radial falloff disc: full alpha at the center decaying
// quadratically to zero at the rim. Used for firefly halos and star
// bloom.
func (b *Buffer) Glow(cx, cy, r float64, c colorful.Color, alpha float64) {
	if r <= 0 || alpha <= 0 {
		return
	}
	x0 := int(math.Floor(cx - r))
	x1 := int(math.Ceil(cx + r))
	y0 := int(math.Floor(cy - r))
	y1 := int(math.Ceil(cy + r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if d >= r {
				continue
			}
			t := 1 - d/r
			b.blend(x, y, c, alpha*t*t)
		}
	}
}

// StrokeLine draws a line of the given width by sampling along its
// length. Good enough for decorative strokes; not a precise rasterizer.
func (b *Buffer) StrokeLine(x1, y1, x2, y2, width float64, c colorful.Color, alpha float64) {
	if alpha <= 0 {
		return
	}
	if width < 1 {
		width = 1
	}
	length := math.Hypot(x2-x1, y2-y1)
	steps := int(length) + 1
	half := width / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := x1 + (x2-x1)*t
		py := y1 + (y2-y1)*t
		if half <= 0.75 {
			b.blend(int(px), int(py), c, alpha)
			continue
		}
		b.FillCircle(px, py, half, c, alpha)
	}
}

// QuadCurve strokes a quadratic bezier sampled into segments.
func (b *Buffer) QuadCurve(x0, y0, cx, cy, x1, y1 float64, segments int, width float64, c colorful.Color, alpha float64) {
	if segments < 2 {
		segments = 2
	}
	px, py := x0, y0
	for i := 1; i <= segments; i++ {
		t := float64(i) / float64(segments)
		mt := 1 - t
		qx := mt*mt*x0 + 2*mt*t*cx + t*t*x1
		qy := mt*mt*y0 + 2*mt*t*cy + t*t*y1
		b.StrokeLine(px, py, qx, qy, width, c, alpha)
		px, py = qx, qy
	}
}

// VerticalGradient fills the buffer with a top-to-bottom blend.
func (b *Buffer) VerticalGradient(top, bottom colorful.Color) {
	for y := 0; y < b.h; y++ {
		t := float64(y) / float64(maxInt(b.h-1, 1))
		c := top.BlendRgb(bottom, t)
		r := uint8(clamp01(c.R) * 255)
		g := uint8(clamp01(c.G) * 255)
		bl := uint8(clamp01(c.B) * 255)
		row := y * b.w * 4
		for x := 0; x < b.w; x++ {
			i := row + x*4
			b.pix[i] = r
			b.pix[i+1] = g
			b.pix[i+2] = bl
			b.pix[i+3] = 255
		}
	}
}

// At returns the pixel at (x, y) as normalized RGB. Out-of-range
// coordinates return black.
func (b *Buffer) At(x, y int) colorful.Color {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return colorful.Color{}
	}
	i := (y*b.w + x) * 4
	return colorful.Color{
		R: float64(b.pix[i]) / 255,
		G: float64(b.pix[i+1]) / 255,
		B: float64(b.pix[i+2]) / 255,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
