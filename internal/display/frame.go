// Package display renders the editor canvas: the composite scaled into the
// visible panel, the brush cursor outline and a status label.
package display

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"rgbyp-maskeditor/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// Background fills the panel outside the image.
var Background = color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}

// Frame is everything needed to draw one canvas frame. Positions and sizes
// are in canvas units; Scale converts them to device pixels.
type Frame struct {
	Composite *image.RGBA
	Origin    geometry.Point2D // screen position of image pixel (0,0)
	Zoom      float64
	Scale     float64

	Cursor *Cursor
	Label  string
}

// Cursor is the brush outline drawn at the pointer.
type Cursor struct {
	Center   geometry.Point2D
	Diameter float64
	Color    color.RGBA
}

// Render draws f into dst, which is sized in device pixels.
func Render(dst *image.RGBA, f Frame) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	s := f.Scale
	if s <= 0 {
		s = 1
	}

	if f.Composite != nil && !f.Composite.Rect.Empty() && f.Zoom > 0 {
		k := f.Zoom * s
		s2d := f64.Aff3{
			k, 0, f.Origin.X * s,
			0, k, f.Origin.Y * s,
		}
		interp := xdraw.Interpolator(xdraw.NearestNeighbor)
		if k < 1 {
			interp = xdraw.ApproxBiLinear
		}
		interp.Transform(dst, s2d, f.Composite, f.Composite.Bounds(), xdraw.Over, nil)
	}

	if c := f.Cursor; c != nil && c.Diameter > 0 {
		center := geometry.Point2D{X: c.Center.X * s, Y: c.Center.Y * s}
		r := c.Diameter * s / 2
		drawRing(dst, center, r+1, 3, color.RGBA{A: 0xc0})
		drawRing(dst, center, r, 1.5, c.Color)
	}

	if f.Label != "" {
		scale := int(math.Round(2 * s))
		DrawLabel(dst, f.Label, 8, 8, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, scale)
	}
}

// drawRing draws a circle outline of the given outer radius and thickness.
func drawRing(dst *image.RGBA, center geometry.Point2D, radius, thickness float64, col color.RGBA) {
	if radius <= 0 {
		return
	}
	inner := radius - thickness
	if inner < 0 {
		inner = 0
	}

	bounds := image.Rect(
		int(math.Floor(center.X-radius))-1,
		int(math.Floor(center.Y-radius))-1,
		int(math.Ceil(center.X+radius))+1,
		int(math.Ceil(center.Y+radius))+1,
	)
	clip := bounds.Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}

	n := int(radius/2) + 16
	if n > 256 {
		n = 256
	}

	var z vector.Rasterizer
	z.Reset(bounds.Dx(), bounds.Dy())
	z.DrawOp = draw.Src
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	addPath(&z, geometry.ArcPoints(center, radius, 0, 2*math.Pi, n), ox, oy)
	if inner > 0 {
		// Opposite winding cuts the hole.
		addPath(&z, geometry.ArcPoints(center, inner, 2*math.Pi, 0, n), ox, oy)
	}

	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(dst, clip, image.NewUniform(col), image.Point{}, mask, clip.Min.Sub(bounds.Min), draw.Over)
}

func addPath(z *vector.Rasterizer, pts []geometry.Point2D, ox, oy float64) {
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
}
