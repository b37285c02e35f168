// Package brush renders round-capped paint and erase strokes into a mask
// layer.
//
// A stroke is composited the way a single canvas path is stroked: the
// coverage of every segment is unioned into one coverage buffer, and the mask
// is recomputed from its pre-stroke snapshot, so overlapping segments and
// joins never darken or double-erase.
package brush

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"rgbyp-maskeditor/pkg/geometry"

	"golang.org/x/image/vector"
)

// Mode selects how a stroke is composited into the mask.
type Mode int

const (
	ModePaint Mode = iota // source-over with the stroke color
	ModeErase             // destination-out
)

func (m Mode) String() string {
	switch m {
	case ModePaint:
		return "Paint"
	case ModeErase:
		return "Erase"
	default:
		return "Unknown"
	}
}

// Renderer draws one stroke at a time into a mask buffer.
type Renderer struct {
	mask     *image.RGBA
	snapshot []byte
	coverage *image.Alpha

	mode  Mode
	color color.RGBA
	width float64
	last  geometry.Point2D

	active bool
	rast   vector.Rasterizer
}

// NewRenderer creates an idle renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Active reports whether a stroke is in progress.
func (r *Renderer) Active() bool {
	return r.active
}

// Mode returns the mode of the current or last stroke.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// Begin starts a stroke at p (image pixels) and renders the initial dot of
// diameter size. It returns the mask rectangle that changed.
func (r *Renderer) Begin(mask *image.RGBA, p geometry.Point2D, mode Mode, c color.RGBA, size int) image.Rectangle {
	if size < 1 {
		size = 1
	}
	r.mask = mask
	r.snapshot = append(r.snapshot[:0], mask.Pix...)
	r.coverage = image.NewAlpha(mask.Rect)
	r.mode = mode
	r.color = c
	r.width = float64(size)
	r.last = p
	r.active = true

	return r.segment(p, p)
}

// Extend adds a line segment from the previous point to p and returns the
// mask rectangle that changed. It is a no-op when no stroke is active.
func (r *Renderer) Extend(p geometry.Point2D) image.Rectangle {
	if !r.active {
		return image.Rectangle{}
	}
	dirty := r.segment(r.last, p)
	r.last = p
	return dirty
}

// Rebase makes the mask's current contents the base the rest of the stroke
// composites over and drops the coverage gathered so far. Call it after the
// mask is replaced wholesale while a stroke is held.
func (r *Renderer) Rebase() {
	if !r.active {
		return
	}
	r.snapshot = append(r.snapshot[:0], r.mask.Pix...)
	clear(r.coverage.Pix)
}

// End finishes the current stroke. The mask keeps the rendered result.
func (r *Renderer) End() {
	r.active = false
	r.mask = nil
	r.coverage = nil
}

// segment rasterizes the capsule a-b, unions it into the stroke coverage and
// recomposites the touched mask pixels.
func (r *Renderer) segment(a, b geometry.Point2D) image.Rectangle {
	radius := r.width / 2
	outline := capsule(a, b, radius)

	box := geometry.BoundingBox(outline)
	local := image.Rect(
		int(math.Floor(box.X))-1,
		int(math.Floor(box.Y))-1,
		int(math.Ceil(box.X+box.Width))+1,
		int(math.Ceil(box.Y+box.Height))+1,
	)
	dirty := local.Intersect(r.mask.Rect)
	if dirty.Empty() {
		return image.Rectangle{}
	}

	// The rasterizer works in the positive quadrant of its own bounds, so
	// the outline is shifted to local coordinates.
	w, h := local.Dx(), local.Dy()
	r.rast.Reset(w, h)
	r.rast.DrawOp = draw.Src
	ox, oy := float64(local.Min.X), float64(local.Min.Y)
	r.rast.MoveTo(float32(outline[0].X-ox), float32(outline[0].Y-oy))
	for _, pt := range outline[1:] {
		r.rast.LineTo(float32(pt.X-ox), float32(pt.Y-oy))
	}
	r.rast.ClosePath()

	scratch := image.NewAlpha(image.Rect(0, 0, w, h))
	r.rast.Draw(scratch, scratch.Bounds(), image.Opaque, image.Point{})

	for y := dirty.Min.Y; y < dirty.Max.Y; y++ {
		for x := dirty.Min.X; x < dirty.Max.X; x++ {
			cov := scratch.Pix[scratch.PixOffset(x-local.Min.X, y-local.Min.Y)]
			ci := r.coverage.PixOffset(x, y)
			if cov > r.coverage.Pix[ci] {
				r.coverage.Pix[ci] = cov
			}
			r.apply(x, y, r.coverage.Pix[ci])
		}
	}
	return dirty
}

// apply writes the composited pixel (x,y) from the snapshot and coverage.
func (r *Renderer) apply(x, y int, cov uint8) {
	i := r.mask.PixOffset(x, y)
	s := r.snapshot[i : i+4 : i+4]
	d := r.mask.Pix[i : i+4 : i+4]
	if cov == 0 {
		copy(d, s)
		return
	}

	k := uint32(cov)
	switch r.mode {
	case ModeErase:
		inv := 255 - k
		for c := 0; c < 4; c++ {
			d[c] = uint8((uint32(s[c])*inv + 127) / 255)
		}
	default:
		// Premultiplied source-over of the coverage-scaled stroke color.
		src := [4]uint32{uint32(r.color.R), uint32(r.color.G), uint32(r.color.B), uint32(r.color.A)}
		sa := (src[3]*k + 127) / 255
		inv := 255 - sa
		for c := 0; c < 4; c++ {
			v := (src[c]*k+127)/255 + (uint32(s[c])*inv+127)/255
			if v > 255 {
				v = 255
			}
			d[c] = uint8(v)
		}
	}
}

// capsule returns the closed outline of a round-capped segment a-b of the
// given radius. A zero-length segment yields a circle.
func capsule(a, b geometry.Point2D, radius float64) []geometry.Point2D {
	n := arcSegments(radius)
	length := a.Distance(b)
	if length < 1e-9 {
		return geometry.ArcPoints(a, radius, 0, 2*math.Pi, 2*n)
	}

	// normal is the segment direction rotated by +90 degrees; the arc at b
	// sweeps through the direction, the arc at a through its opposite.
	dx, dy := (b.X-a.X)/length, (b.Y-a.Y)/length
	theta := math.Atan2(dx, -dy)

	outline := geometry.ArcPoints(b, radius, theta, theta-math.Pi, n)
	outline = append(outline, geometry.ArcPoints(a, radius, theta-math.Pi, theta-2*math.Pi, n)...)
	return outline
}

// arcSegments returns an even segment count so each cap reaches its apex.
func arcSegments(radius float64) int {
	n := int(radius/2) + 8
	if n > 96 {
		n = 96
	}
	return n + n%2
}
