// Package geometry holds the float coordinate types used to map between
// canvas pixels and image pixels.
package geometry

import (
	"math"
)

// Point2D is a position in either canvas or image space.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the length of the segment p-q.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (p Point2D) Add(q Point2D) Point2D { return Point2D{p.X + q.X, p.Y + q.Y} }

func (p Point2D) Sub(q Point2D) Point2D { return Point2D{p.X - q.X, p.Y - q.Y} }

// Scale multiplies both coordinates by k.
func (p Point2D) Scale(k float64) Point2D { return Point2D{p.X * k, p.Y * k} }

// Near reports whether p and q differ by at most eps on each axis.
func (p Point2D) Near(q Point2D, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Rect is an axis-aligned box given by its top-left corner and extent.
// The canvas container and stroke outlines use it.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func (r Rect) TopLeft() Point2D { return Point2D{r.X, r.Y} }

func (r Rect) Center() Point2D {
	return Point2D{r.X + r.Width*0.5, r.Y + r.Height*0.5}
}

// Empty is true for degenerate or inverted boxes.
func (r Rect) Empty() bool {
	return !(r.Width > 0 && r.Height > 0)
}

// Size is an extent without a position, e.g. native image dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewSize(w, h float64) Size { return Size{Width: w, Height: h} }

// AffineTransform maps image space to canvas space:
//
//	x' = A*x + B*y + TX
//	y' = C*x + D*y + TY
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Translation moves points by (tx, ty).
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, TX: tx, D: 1, TY: ty}
}

// Scale stretches points away from the origin.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns the transform that applies u and then t.
func (t AffineTransform) Compose(u AffineTransform) AffineTransform {
	var out AffineTransform
	out.A = t.A*u.A + t.B*u.C
	out.B = t.A*u.B + t.B*u.D
	out.C = t.C*u.A + t.D*u.C
	out.D = t.C*u.B + t.D*u.D
	shift := t.Apply(Point2D{u.TX, u.TY})
	out.TX, out.TY = shift.X, shift.Y
	return out
}

// ArcPoints samples n+1 points along a circular arc from angle a0 to a1,
// both ends included. Brush outlines and the cursor ring are built from it.
func ArcPoints(center Point2D, radius, a0, a1 float64, n int) []Point2D {
	n = max(n, 1)
	step := (a1 - a0) / float64(n)
	points := make([]Point2D, 0, n+1)
	for i := 0; i < n+1; i++ {
		sin, cos := math.Sincos(a0 + step*float64(i))
		points = append(points, Point2D{center.X + radius*cos, center.Y + radius*sin})
	}
	return points
}

// BoundingBox returns the smallest Rect containing points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Y, hi.Y = min(lo.Y, p.Y), max(hi.Y, p.Y)
	}
	return Rect{X: lo.X, Y: lo.Y, Width: hi.X - lo.X, Height: hi.Y - lo.Y}
}
