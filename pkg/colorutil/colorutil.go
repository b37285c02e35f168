// Package colorutil provides the fixed RGBYP mask palette and color helpers.
package colorutil

import (
	"image/color"
)

// Palette colors, in hotkey order (1..5).
var (
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}

	Transparent = color.RGBA{}
)

// PaletteSize is the number of selectable mask colors.
const PaletteSize = 5

var palette = [PaletteSize]color.RGBA{Red, Green, Blue, Yellow, Pink}

var paletteNames = [PaletteSize]string{"R", "G", "B", "Y", "P"}

// PaletteColor returns the palette color for index. Out-of-range indices
// fall back to red.
func PaletteColor(index int) color.RGBA {
	if index < 0 || index >= PaletteSize {
		return Red
	}
	return palette[index]
}

// PaletteName returns the one-letter name of the palette entry.
func PaletteName(index int) string {
	if index < 0 || index >= PaletteSize {
		return "?"
	}
	return paletteNames[index]
}

// Palette returns a copy of the full palette.
func Palette() []color.RGBA {
	out := make([]color.RGBA, PaletteSize)
	copy(out, palette[:])
	return out
}

// ClampIndex bounds a palette index to [0, PaletteSize-1].
func ClampIndex(index int) int {
	if index < 0 {
		return 0
	}
	if index >= PaletteSize {
		return PaletteSize - 1
	}
	return index
}

// Classify returns the palette index whose channels match c using 0.5
// thresholds on the premultiplied channels, or -1 when c matches none.
func Classify(c color.Color) int {
	r, g, b, _ := c.RGBA()
	const half = 0x7fff
	hr, hg, hb := r > half, g > half, b > half
	switch {
	case hr && !hg && !hb:
		return 0
	case !hr && hg && !hb:
		return 1
	case !hr && !hg && hb:
		return 2
	case hr && hg && !hb:
		return 3
	case hr && !hg && hb:
		return 4
	}
	return -1
}
