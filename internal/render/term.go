package render

import (
	"strconv"
	"strings"
)

// TermSink presents a Buffer as ANSI 256-color text. Each terminal cell
// averages the block of framebuffer pixels it covers; luminance selects
// a glyph from the palette ramp, color picks the nearest ANSI index.
type TermSink struct {
	cols, rows    int
	palette       []rune
	paletteName   string
	useANSI       bool
	statusBuilder strings.Builder
}

// Frame is one presented terminal frame.
type Frame struct {
	Lines  []string
	Status string
}

var (
	resetANSI       = "\x1b[0m"
	precomputedANSI [256]string
)

func init() {
	for i := range precomputedANSI {
		precomputedANSI[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
	}
}

// NewTermSink creates a sink for a cols x rows character grid.
func NewTermSink(cols, rows int, paletteName string, useANSI bool) *TermSink {
	s := &TermSink{useANSI: useANSI}
	s.Resize(cols, rows)
	s.SetPalette(paletteName)
	return s
}

// Resize updates the character grid dimensions.
func (s *TermSink) Resize(cols, rows int) {
	if cols > 0 {
		s.cols = cols
	}
	if rows > 0 {
		s.rows = rows
	}
}

// SetPalette switches the glyph ramp.
func (s *TermSink) SetPalette(name string) {
	if name == "" {
		name = "default"
	}
	s.palette = Palette(name)
	s.paletteName = name
}

// PaletteName returns the active glyph ramp name.
func (s *TermSink) PaletteName() string { return s.paletteName }

// Frame downsamples the buffer into terminal lines.
func (s *TermSink) Frame(buf *Buffer) Frame {
	if s.cols <= 0 || s.rows <= 0 {
		return Frame{}
	}
	w, h := buf.Size()
	lines := make([]string, s.rows)
	for row := 0; row < s.rows; row++ {
		var builder strings.Builder
		builder.Grow(s.cols * 8)
		lastColor := -1
		for col := 0; col < s.cols; col++ {
			r, g, b := s.cellAverage(buf, w, h, col, row)
			lum := 0.2126*r + 0.7152*g + 0.0722*b
			idx := clampInt(int(lum*float64(len(s.palette)-1)+0.5), 0, len(s.palette)-1)
			if s.useANSI {
				ci := rgbToANSI(r, g, b)
				if ci != lastColor {
					builder.WriteString(colorCode(ci))
					lastColor = ci
				}
			}
			builder.WriteRune(s.palette[idx])
		}
		if s.useANSI {
			builder.WriteString(resetANSI)
		}
		lines[row] = builder.String()
	}
	return Frame{Lines: lines}
}

func (s *TermSink) cellAverage(buf *Buffer, w, h, col, row int) (float64, float64, float64) {
	x0 := col * w / s.cols
	x1 := (col + 1) * w / s.cols
	y0 := row * h / s.rows
	y1 := (row + 1) * h / s.rows
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	var r, g, b float64
	n := 0
	pix := buf.Pix()
	for y := y0; y < y1 && y < h; y++ {
		rowOff := y * w * 4
		for x := x0; x < x1 && x < w; x++ {
			i := rowOff + x*4
			r += float64(pix[i])
			g += float64(pix[i+1])
			b += float64(pix[i+2])
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	inv := 1 / (255 * float64(n))
	return r * inv, g * inv, b * inv
}

// BuildStatus assembles the one-line status bar.
func (s *TermSink) BuildStatus(effect, tier, state string, fps float64, bass, mid, treble, beat float64) string {
	builder := &s.statusBuilder
	builder.Reset()
	builder.Grow(128)
	builder.WriteString(effect)
	builder.WriteString(" | quality=")
	builder.WriteString(tier)
	builder.WriteString(" state=")
	builder.WriteString(state)
	builder.WriteString(" | bass ")
	appendFloat(builder, bass, 2)
	builder.WriteString(" mid ")
	appendFloat(builder, mid, 2)
	builder.WriteString(" treble ")
	appendFloat(builder, treble, 2)
	builder.WriteString(" beat ")
	appendFloat(builder, beat, 2)
	builder.WriteString(" fps ")
	appendFloat(builder, fps, 1)
	return builder.String()
}

func colorCode(index int) string {
	if index < 0 {
		index = 0
	} else if index >= len(precomputedANSI) {
		index = len(precomputedANSI) - 1
	}
	return precomputedANSI[index]
}

func rgbToANSI(r, g, b float64) int {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)

	// Grayscale ramp for near-neutral colors
	if absFloat(r-g) < 0.02 && absFloat(g-b) < 0.02 {
		gray := clampInt(int(r*23+0.5), 0, 23)
		return 232 + gray
	}

	ri := clampInt(int(r*5+0.5), 0, 5)
	gi := clampInt(int(g*5+0.5), 0, 5)
	bi := clampInt(int(b*5+0.5), 0, 5)
	return 16 + 36*ri + 6*gi + bi
}

func appendFloat(builder *strings.Builder, value float64, precision int) {
	var buf [32]byte
	b := strconv.AppendFloat(buf[:0], value, 'f', precision, 64)
	builder.Write(b)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
