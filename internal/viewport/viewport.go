// Package viewport maps between screen coordinates and native image pixels
// for a zoomable, scrollable image display.
//
// The displayed canvas is the image scaled by Zoom and placed at the
// container's top-left corner minus the scroll offset:
//
//	screen = container.TopLeft - Scroll + image*Zoom
package viewport

import (
	"math"

	"rgbyp-maskeditor/pkg/geometry"
)

const (
	MinZoom  = 0.1
	MaxZoom  = 10.0
	ZoomStep = 1.1
)

// Viewport holds the zoom and scroll state of one image display.
type Viewport struct {
	Container geometry.Rect    // visible panel, screen space
	ImageSize geometry.Size    // native image size in pixels
	Zoom      float64          // display pixels per image pixel
	Scroll    geometry.Point2D // panel scroll offset, screen space
}

// New creates a viewport at zoom 1 with no scroll.
func New(container geometry.Rect, imgW, imgH int) Viewport {
	return Viewport{
		Container: container,
		ImageSize: geometry.NewSize(float64(imgW), float64(imgH)),
		Zoom:      1,
	}
}

// ClampZoom bounds z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// FitZoom returns the zoom at which an image of the given size fits inside
// the container, clamped into the zoom range.
func FitZoom(container geometry.Rect, image geometry.Size) float64 {
	if container.Empty() || image.Width <= 0 || image.Height <= 0 {
		return 1
	}
	zoom := math.Min(container.Width/image.Width, container.Height/image.Height)
	return ClampZoom(zoom)
}

// CanvasOrigin returns the screen position of image pixel (0,0).
func (v *Viewport) CanvasOrigin() geometry.Point2D {
	return v.Container.TopLeft().Sub(v.Scroll)
}

// DisplaySize returns the size of the rendered canvas, nativeSize * zoom.
func (v *Viewport) DisplaySize() geometry.Size {
	return geometry.NewSize(v.ImageSize.Width*v.zoom(), v.ImageSize.Height*v.zoom())
}

// ImageToScreenTransform returns the affine transform from image pixels to
// screen coordinates.
func (v *Viewport) ImageToScreenTransform() geometry.AffineTransform {
	origin := v.CanvasOrigin()
	sx, sy := v.scale()
	return geometry.Translation(origin.X, origin.Y).Compose(geometry.Scale(sx, sy))
}

// ScreenToImage converts a screen point to image pixel coordinates.
func (v *Viewport) ScreenToImage(p geometry.Point2D) geometry.Point2D {
	// image = (p - origin) * imageW / displayW
	origin := v.CanvasOrigin()
	sx, sy := v.scale()
	return geometry.Point2D{
		X: (p.X - origin.X) / sx,
		Y: (p.Y - origin.Y) / sy,
	}
}

// ImageToScreen converts image pixel coordinates to a screen point.
func (v *Viewport) ImageToScreen(q geometry.Point2D) geometry.Point2D {
	return v.ImageToScreenTransform().Apply(q)
}

// InImage reports whether an image-space point lies inside the image.
func (v *Viewport) InImage(q geometry.Point2D) bool {
	return q.X >= 0 && q.Y >= 0 && q.X < v.ImageSize.Width && q.Y < v.ImageSize.Height
}

// SetContainer updates the visible panel rectangle.
func (v *Viewport) SetContainer(r geometry.Rect) {
	v.Container = r
}

// SetImageSize updates the native image size.
func (v *Viewport) SetImageSize(w, h int) {
	v.ImageSize = geometry.NewSize(float64(w), float64(h))
}

// ZoomAt multiplies the zoom by ZoomStep (deltaSign > 0) or divides by it
// (deltaSign < 0), keeping the image point under p fixed on screen.
// It returns false when the clamped zoom is unchanged; the scroll offset is
// then left untouched.
func (v *Viewport) ZoomAt(p geometry.Point2D, deltaSign int) bool {
	if deltaSign == 0 {
		return false
	}

	anchor := v.ScreenToImage(p)

	oldZoom := v.zoom()
	factor := ZoomStep
	if deltaSign < 0 {
		factor = 1 / ZoomStep
	}
	newZoom := ClampZoom(oldZoom * factor)
	if newZoom == oldZoom {
		return false
	}
	v.Zoom = newZoom

	// Solve container.TopLeft - scroll + anchor*zoom = p for scroll.
	v.Scroll = geometry.Point2D{
		X: v.Container.X + anchor.X*newZoom - p.X,
		Y: v.Container.Y + anchor.Y*newZoom - p.Y,
	}
	return true
}

// ZoomAtCenter zooms anchored at the center of the container, as used by
// keyboard zoom.
func (v *Viewport) ZoomAtCenter(deltaSign int) bool {
	return v.ZoomAt(v.Container.Center(), deltaSign)
}

// Fit sets the zoom so the whole image fits the container and resets the
// scroll offset.
func (v *Viewport) Fit() {
	v.Zoom = FitZoom(v.Container, v.ImageSize)
	v.Scroll = geometry.Point2D{}
}

// PanFrom sets the scroll so the content follows the pointer from start to p,
// given the scroll offset recorded at start.
func (v *Viewport) PanFrom(start, startScroll, p geometry.Point2D) {
	v.Scroll = startScroll.Sub(p.Sub(start))
}

// BrushDiameterOnScreen returns the on-screen diameter of a brush of the
// given size in image pixels.
func (v *Viewport) BrushDiameterOnScreen(size int) float64 {
	return float64(size) * v.zoom()
}

func (v *Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// scale returns displayed canvas pixels per image pixel on each axis.
func (v *Viewport) scale() (float64, float64) {
	z := v.zoom()
	display := v.DisplaySize()
	if v.ImageSize.Width <= 0 || v.ImageSize.Height <= 0 {
		return z, z
	}
	return display.Width / v.ImageSize.Width, display.Height / v.ImageSize.Height
}
