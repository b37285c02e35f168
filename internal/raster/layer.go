// Package raster holds the editor's layer model: an immutable base image, a
// mutable paint mask and the composite derived from both.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Model holds the base and mask buffers at the source image's native
// resolution. The composite is never stored; it is recomputed from base,
// mask and Opacity.
type Model struct {
	base    *image.RGBA
	mask    *image.RGBA
	opacity float64
}

// NewModel creates a model with empty w x h buffers and full mask opacity.
func NewModel(w, h int) *Model {
	m := &Model{opacity: 1}
	m.Resize(w, h)
	return m
}

// Width returns the native width in pixels.
func (m *Model) Width() int {
	return m.base.Bounds().Dx()
}

// Height returns the native height in pixels.
func (m *Model) Height() int {
	return m.base.Bounds().Dy()
}

// Bounds returns the native bounds, always anchored at (0,0).
func (m *Model) Bounds() image.Rectangle {
	return m.base.Bounds()
}

// Base returns the base layer. Callers must not modify it.
func (m *Model) Base() *image.RGBA {
	return m.base
}

// Mask returns the mutable mask layer.
func (m *Model) Mask() *image.RGBA {
	return m.mask
}

// Opacity returns the mask opacity in [0,1].
func (m *Model) Opacity() float64 {
	return m.opacity
}

// SetOpacity sets the mask opacity, clamped to [0,1].
func (m *Model) SetOpacity(opacity float64) {
	m.opacity = ClampOpacity(opacity)
}

// ClampOpacity bounds an opacity value to [0,1]. NaN maps to 1.
func ClampOpacity(opacity float64) float64 {
	if math.IsNaN(opacity) {
		return 1
	}
	if opacity < 0 {
		return 0
	}
	if opacity > 1 {
		return 1
	}
	return opacity
}

// Resize reallocates base and mask at the new native size. The mask is
// cleared; the base is blank until DrawBase is called.
func (m *Model) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	r := image.Rect(0, 0, w, h)
	m.base = image.NewRGBA(r)
	m.mask = image.NewRGBA(r)
}

// DrawBase copies img 1:1 into the base layer, resizing the model to the
// image's dimensions if they differ.
func (m *Model) DrawBase(img image.Image) {
	b := img.Bounds()
	if b.Dx() != m.Width() || b.Dy() != m.Height() {
		m.Resize(b.Dx(), b.Dy())
	}
	draw.Draw(m.base, m.base.Bounds(), img, b.Min, draw.Src)
}

// DrawMask replaces the mask with img drawn 1:1 from the top-left corner.
// Pixels outside img stay transparent; pixels outside the model are clipped.
func (m *Model) DrawMask(img image.Image) {
	m.ClearMask()
	b := img.Bounds()
	draw.Draw(m.mask, m.mask.Bounds(), img, b.Min, draw.Src)
}

// ClearMask erases the mask layer only.
func (m *Model) ClearMask() {
	clear(m.mask.Pix)
}

// FillMask fills rect of the mask with c, replacing what was there.
func (m *Model) FillMask(rect image.Rectangle, c color.Color) {
	draw.Draw(m.mask, rect.Intersect(m.mask.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// MaskAlphaAt returns the mask alpha at (x,y), or 0 outside the mask.
func (m *Model) MaskAlphaAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}).In(m.mask.Rect) {
		return 0
	}
	return m.mask.Pix[m.mask.PixOffset(x, y)+3]
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := &Model{opacity: m.opacity}
	c.base = cloneRGBA(m.base)
	c.mask = cloneRGBA(m.mask)
	return c
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
