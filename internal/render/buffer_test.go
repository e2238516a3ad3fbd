package render

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestBufferClearAndAt(t *testing.T) {
	b := NewBuffer(8, 4)
	if w, h := b.Size(); w != 8 || h != 4 {
		t.Fatalf("size=(%d, %d) want=(8, 4)", w, h)
	}

	b.Clear(colorful.Color{R: 1, G: 0, B: 0})
	c := b.At(3, 2)
	if c.R < 0.99 || c.G > 0.01 || c.B > 0.01 {
		t.Fatalf("unexpected pixel after clear: %+v", c)
	}

	if got := b.At(-1, 0); got != (colorful.Color{}) {
		t.Fatalf("out-of-range At=%+v want black", got)
	}
}

func TestBufferResizeClamps(t *testing.T) {
	b := NewBuffer(0, -5)
	if w, h := b.Size(); w != 1 || h != 1 {
		t.Fatalf("size=(%d, %d) want=(1, 1)", w, h)
	}
	b.Resize(10, 10)
	if got := len(b.Pix()); got != 10*10*4 {
		t.Fatalf("pix length=%d want=%d", got, 10*10*4)
	}
}

func TestFillCirclePaintsCenter(t *testing.T) {
	b := NewBuffer(32, 32)
	b.Clear(colorful.Color{})
	b.FillCircle(16, 16, 4, colorful.Color{R: 0, G: 1, B: 0}, 1)

	if c := b.At(16, 16); c.G < 0.9 {
		t.Fatalf("center not painted: %+v", c)
	}
	if c := b.At(2, 2); c.G > 0.01 {
		t.Fatalf("corner painted outside the circle: %+v", c)
	}
}

func TestGlowFallsOffTowardRim(t *testing.T) {
	b := NewBuffer(32, 32)
	b.Clear(colorful.Color{})
	b.Glow(16, 16, 10, colorful.Color{R: 1, G: 1, B: 1}, 1)

	center := b.At(16, 16)
	edge := b.At(16+8, 16)
	if center.R <= edge.R {
		t.Fatalf("glow not decaying: center=%v edge=%v", center.R, edge.R)
	}
	if outside := b.At(16, 16+11); outside.R > 0.01 {
		t.Fatalf("glow painted past its radius: %v", outside.R)
	}
}

func TestTermSinkFrameDimensions(t *testing.T) {
	b := NewBuffer(64, 48)
	b.Clear(colorful.Color{R: 0.5, G: 0.5, B: 0.5})

	s := NewTermSink(20, 10, "default", false)
	frame := s.Frame(b)
	if len(frame.Lines) != 10 {
		t.Fatalf("lines=%d want=10", len(frame.Lines))
	}
	for i, line := range frame.Lines {
		if got := len([]rune(line)); got != 20 {
			t.Fatalf("line %d width=%d want=20", i, got)
		}
	}
}

func TestRGBToANSI(t *testing.T) {
	// Near-neutral colors land on the grayscale ramp.
	if got := rgbToANSI(0.5, 0.5, 0.5); got < 232 {
		t.Fatalf("gray index=%d want >= 232", got)
	}
	// Saturated colors use the 6x6x6 cube.
	if got := rgbToANSI(1, 0, 0); got != 16+36*5 {
		t.Fatalf("red index=%d want=%d", got, 16+36*5)
	}
	if got := rgbToANSI(0, 0, 1); got != 16+5 {
		t.Fatalf("blue index=%d want=%d", got, 16+5)
	}
}

func TestPaletteFallback(t *testing.T) {
	if got := len(Palette("no-such-ramp")); got == 0 {
		t.Fatalf("unknown palette should fall back to the default ramp")
	}
	names := PaletteNames()
	if len(names) == 0 {
		t.Fatalf("no palettes registered")
	}
	for _, name := range names {
		if len(Palette(name)) < 2 {
			t.Fatalf("palette %q too short", name)
		}
	}
}
