// Package automask fills the mask with preset vertical color bands.
package automask

import (
	"fmt"
	"image"
	"image/color"

	"rgbyp-maskeditor/internal/raster"
	"rgbyp-maskeditor/pkg/colorutil"
)

// Preset indices. None means no preset has been applied yet.
const (
	None       = -1
	Halves     = 0
	LeftThird  = 1
	RightThird = 2
	Thirds     = 3

	Count = 4
)

var presetNames = [Count]string{"1/2", "1/3", "2/3", "1/3 x3"}

// Name returns the toolbar label of preset i.
func Name(i int) string {
	if i < 0 || i >= Count {
		return ""
	}
	return presetNames[i]
}

// Band is one filled rectangle of a preset.
type Band struct {
	Rect  image.Rectangle
	Color color.RGBA
}

// Bands returns the rectangles preset i paints on a w x h mask. Adjacent
// bands share their boundary so they tile [0,w) exactly.
func Bands(i, w, h int) ([]Band, error) {
	c0 := colorutil.Red
	c1 := colorutil.Green
	c2 := colorutil.Blue

	col := func(x0, x1 int, c color.RGBA) Band {
		return Band{Rect: image.Rect(x0, 0, x1, h), Color: c}
	}

	switch i {
	case Halves:
		mid := w / 2
		return []Band{col(0, mid, c0), col(mid, w, c1)}, nil
	case LeftThird:
		b := w / 3
		return []Band{col(0, b, c0), col(b, w, c1)}, nil
	case RightThird:
		b := 2 * w / 3
		return []Band{col(0, b, c0), col(b, w, c1)}, nil
	case Thirds:
		b1, b2 := w/3, 2*w/3
		return []Band{col(0, b1, c0), col(b1, b2, c1), col(b2, w, c2)}, nil
	default:
		return nil, fmt.Errorf("unknown auto-mask preset %d", i)
	}
}

// Apply clears the mask and paints preset i.
func Apply(m *raster.Model, i int) error {
	bands, err := Bands(i, m.Width(), m.Height())
	if err != nil {
		return err
	}
	m.ClearMask()
	for _, b := range bands {
		m.FillMask(b.Rect, b.Color)
	}
	return nil
}

// Next returns the preset after i, cycling 0,1,2,3,0. Any index outside the
// cycle, including None, restarts at 0.
func Next(i int) int {
	if i < 0 || i >= Count-1 {
		return 0
	}
	return i + 1
}
