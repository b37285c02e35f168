// Package regions turns a saved RGBYP mask into per-color binary masks for
// the compute pipeline.
package regions

import (
	"image"
	"image/color"

	"rgbyp-maskeditor/pkg/colorutil"

	"gonum.org/v1/gonum/stat"
)

// PlaceholderSize is the side of the black mask that stands in for a color
// with no pixels.
const PlaceholderSize = 64

// Region is the binary mask of one palette color.
type Region struct {
	Index int
	Name  string
	Mask  *image.Gray
	// Pixels is the number of mask pixels of this color.
	Pixels int
}

// Empty reports whether the color has no pixels.
func (r Region) Empty() bool {
	return r.Pixels == 0
}

// Options controls Split.
type Options struct {
	// Placeholder replaces masks of absent colors with a black
	// PlaceholderSize square.
	Placeholder bool
}

// Split classifies every pixel of mask into one of the palette colors and
// returns one white-on-black mask per color, in palette order.
func Split(mask image.Image, opts Options) []Region {
	b := mask.Bounds()
	regions := make([]Region, colorutil.PaletteSize)
	for i := range regions {
		regions[i] = Region{
			Index: i,
			Name:  colorutil.PaletteName(i),
			Mask:  image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy())),
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := colorutil.Classify(mask.At(x, y))
			if i < 0 {
				continue
			}
			r := &regions[i]
			r.Mask.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: 255})
			r.Pixels++
		}
	}

	if opts.Placeholder {
		for i := range regions {
			if regions[i].Empty() {
				regions[i].Mask = image.NewGray(image.Rect(0, 0, PlaceholderSize, PlaceholderSize))
			}
		}
	}
	return regions
}

// Coverage returns the fraction of set pixels in a binary mask.
func Coverage(mask *image.Gray) float64 {
	if len(mask.Pix) == 0 {
		return 0
	}
	values := make([]float64, 0, mask.Rect.Dx()*mask.Rect.Dy())
	for y := mask.Rect.Min.Y; y < mask.Rect.Max.Y; y++ {
		row := mask.Pix[mask.PixOffset(mask.Rect.Min.X, y):]
		for x := 0; x < mask.Rect.Dx(); x++ {
			values = append(values, float64(row[x])/255)
		}
	}
	return stat.Mean(values, nil)
}

// Stats summarises how much of the image each color covers.
type Stats struct {
	Name     string
	Pixels   int
	Coverage float64
}

// Summarize returns per-region coverage. Placeholder masks report zero.
func Summarize(regions []Region) []Stats {
	out := make([]Stats, len(regions))
	for i, r := range regions {
		out[i] = Stats{Name: r.Name, Pixels: r.Pixels}
		if !r.Empty() {
			out[i].Coverage = Coverage(r.Mask)
		}
	}
	return out
}
