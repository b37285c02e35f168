package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// CompositeTo renders the composite into dst: dst is cleared, the base is
// drawn 1:1 and the mask is drawn on top with source-over blending scaled by
// the mask opacity. The result depends only on base, mask and opacity.
func (m *Model) CompositeTo(dst *image.RGBA) {
	clear(dst.Pix)

	r := dst.Bounds().Intersect(m.Bounds())
	if r.Empty() {
		return
	}

	draw.Draw(dst, r, m.base, r.Min, draw.Src)

	if m.opacity <= 0 {
		return
	}
	alpha := image.NewUniform(color.Alpha16{A: uint16(m.opacity*0xffff + 0.5)})
	draw.DrawMask(dst, r, m.mask, r.Min, alpha, image.Point{}, draw.Over)
}

// Composite allocates and returns a fresh composite at native size.
func (m *Model) Composite() *image.RGBA {
	dst := image.NewRGBA(m.Bounds())
	m.CompositeTo(dst)
	return dst
}
