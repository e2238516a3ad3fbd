package render

var (
	defaultPalette = []rune(" .,:-;+=*%#@█")
	boxPalette     = []rune(" ░▒▓█")
	sparkPalette   = []rune(" ´`^\"~:;*+ו¤°oO@#█")
)

// Palette returns the glyph ramp used for luminance mapping in the
// terminal sink.
func Palette(name string) []rune {
	switch name {
	case "box":
		return boxPalette
	case "spark":
		return sparkPalette
	default:
		return defaultPalette
	}
}

// PaletteNames returns all palette identifiers.
func PaletteNames() []string {
	return []string{"default", "box", "spark"}
}
