// Package canvas provides the mask painting canvas widget.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync/atomic"

	"rgbyp-maskeditor/internal/display"
	"rgbyp-maskeditor/internal/editor"
	"rgbyp-maskeditor/internal/session"
	"rgbyp-maskeditor/internal/tool"
	"rgbyp-maskeditor/pkg/colorutil"
	"rgbyp-maskeditor/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// MaskCanvas displays the active editor's composite and feeds pointer
// input to its tool machine.
type MaskCanvas struct {
	widget.BaseWidget

	ctrl   *editor.Controller
	raster *fynecanvas.Raster

	// composite is only touched inside ctrl.Do.
	composite *image.RGBA
	dirty     atomic.Bool

	fitPending atomic.Bool
	showStatus bool

	// held tracks buttons pressed over the canvas; cleared on leave.
	held tool.Buttons
}

var (
	_ desktop.Mouseable   = (*MaskCanvas)(nil)
	_ desktop.Hoverable   = (*MaskCanvas)(nil)
	_ desktop.Cursorable  = (*MaskCanvas)(nil)
	_ fyne.Scrollable     = (*MaskCanvas)(nil)
	_ fyne.WidgetRenderer = (*maskCanvasRenderer)(nil)
)

// NewMaskCanvas creates a canvas bound to ctrl.
func NewMaskCanvas(ctrl *editor.Controller) *MaskCanvas {
	mc := &MaskCanvas{ctrl: ctrl, showStatus: true}
	mc.dirty.Store(true)
	mc.fitPending.Store(true)
	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels
	mc.ExtendBaseWidget(mc)
	return mc
}

// SetShowStatus toggles the status label in the corner of the canvas.
func (mc *MaskCanvas) SetShowStatus(show bool) {
	mc.showStatus = show
	mc.raster.Refresh()
}

// MaskChanged marks the composite stale and schedules a redraw.
// Safe to call from session event listeners.
func (mc *MaskCanvas) MaskChanged() {
	mc.dirty.Store(true)
	mc.raster.Refresh()
}

// ViewChanged schedules a redraw without recompositing.
func (mc *MaskCanvas) ViewChanged() {
	mc.raster.Refresh()
}

// Opened fits the newly opened image into the canvas.
func (mc *MaskCanvas) Opened() {
	mc.dirty.Store(true)
	size := mc.Size()
	if size.Width <= 0 || size.Height <= 0 {
		mc.fitPending.Store(true)
		return
	}
	mc.ctrl.SetContainer(containerRect(size), true)
	mc.raster.Refresh()
}

// MouseDown implements desktop.Mouseable.
func (mc *MaskCanvas) MouseDown(ev *desktop.MouseEvent) {
	b, ok := toolButton(ev.Button)
	if !ok {
		return
	}
	mc.held |= heldButtons(ev.Button)
	p := toPoint(ev.Position)
	mc.ctrl.Do(func(m *tool.Machine) {
		m.PointerDown(p, b)
	})
}

// MouseUp implements desktop.Mouseable.
func (mc *MaskCanvas) MouseUp(ev *desktop.MouseEvent) {
	b, ok := toolButton(ev.Button)
	if !ok {
		return
	}
	mc.held &^= heldButtons(ev.Button)
	p := toPoint(ev.Position)
	mc.ctrl.Do(func(m *tool.Machine) {
		m.PointerUp(p, b)
	})
}

// MouseIn implements desktop.Hoverable.
func (mc *MaskCanvas) MouseIn(ev *desktop.MouseEvent) {
	mc.held = 0
	mc.MouseMoved(ev)
}

// MouseMoved implements desktop.Hoverable.
func (mc *MaskCanvas) MouseMoved(ev *desktop.MouseEvent) {
	held := heldButtons(ev.Button)
	if ev.Button == 0 {
		held = mc.held
	}
	p := toPoint(ev.Position)
	mc.ctrl.Do(func(m *tool.Machine) {
		m.PointerMove(p, held)
	})
	mc.raster.Refresh()
}

// MouseOut implements desktop.Hoverable.
func (mc *MaskCanvas) MouseOut() {
	mc.held = 0
	mc.ctrl.Do(func(m *tool.Machine) {
		m.PointerLeave()
	})
	mc.raster.Refresh()
}

// Scrolled implements fyne.Scrollable. Wheel up zooms in at the pointer.
func (mc *MaskCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY == 0 {
		return
	}
	p := toPoint(ev.Position)
	mc.ctrl.Do(func(m *tool.Machine) {
		m.Wheel(p, -float64(ev.Scrolled.DY))
	})
}

// Cursor implements desktop.Cursorable.
func (mc *MaskCanvas) Cursor() desktop.Cursor {
	cursor := desktop.Cursor(desktop.DefaultCursor)
	mc.ctrl.Do(func(m *tool.Machine) {
		if m.EffectiveTool() != session.ToolPan {
			cursor = desktop.CrosshairCursor
		}
	})
	return cursor
}

// draw renders a frame of w x h device pixels.
func (mc *MaskCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	frame := display.Frame{Scale: 1}
	if size := mc.Size(); size.Width > 0 {
		frame.Scale = float64(w) / float64(size.Width)
	}

	err := mc.ctrl.Do(func(m *tool.Machine) {
		sess := m.Session()
		if mc.composite == nil || mc.composite.Rect != sess.Model.Bounds() {
			mc.composite = image.NewRGBA(sess.Model.Bounds())
			mc.dirty.Store(true)
		}
		if mc.dirty.Swap(false) {
			sess.Model.CompositeTo(mc.composite)
		}

		frame.Composite = mc.composite
		frame.Origin = sess.View.CanvasOrigin()
		frame.Zoom = sess.View.Zoom
		if sess.HasCursor && m.EffectiveTool() != session.ToolPan {
			frame.Cursor = &display.Cursor{
				Center:   sess.Cursor,
				Diameter: sess.View.BrushDiameterOnScreen(sess.BrushSize),
				Color:    cursorColor(sess),
			}
		}
		if mc.showStatus {
			frame.Label = StatusText(sess)
		}
	})
	if err != nil {
		frame = display.Frame{Scale: frame.Scale}
	}

	display.Render(output, frame)
	return output
}

// StatusText summarizes the session for the canvas label and status bar.
func StatusText(sess *session.Session) string {
	name := strings.ToUpper(sess.Tool.String())
	if sess.SpaceHeld {
		name = "PAN"
	}
	return fmt.Sprintf("%s %s %d %d%% %.2fX",
		name,
		colorutil.PaletteName(sess.ColorIndex),
		sess.BrushSize,
		int(math.Round(sess.MaskOpacity()*100)),
		sess.View.Zoom,
	)
}

func cursorColor(sess *session.Session) color.RGBA {
	if sess.Tool == session.ToolErase {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return colorutil.PaletteColor(sess.ColorIndex)
}

// toolButton maps a fyne mouse button to the machine's button index.
func toolButton(b desktop.MouseButton) (tool.Button, bool) {
	switch {
	case b&desktop.MouseButtonPrimary != 0:
		return tool.ButtonPrimary, true
	case b&desktop.MouseButtonSecondary != 0:
		return tool.ButtonSecondary, true
	case b&desktop.MouseButtonTertiary != 0:
		return tool.ButtonMiddle, true
	}
	return 0, false
}

func heldButtons(b desktop.MouseButton) tool.Buttons {
	var held tool.Buttons
	if b&desktop.MouseButtonPrimary != 0 {
		held |= tool.HeldPrimary
	}
	if b&desktop.MouseButtonSecondary != 0 {
		held |= tool.HeldSecondary
	}
	if b&desktop.MouseButtonTertiary != 0 {
		held |= tool.HeldMiddle
	}
	return held
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(p.X), float64(p.Y))
}

func containerRect(size fyne.Size) geometry.Rect {
	return geometry.Rect{Width: float64(size.Width), Height: float64(size.Height)}
}

// CreateRenderer implements fyne.Widget.
func (mc *MaskCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &maskCanvasRenderer{canvas: mc}
}

type maskCanvasRenderer struct {
	canvas *MaskCanvas
}

func (r *maskCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	r.canvas.ctrl.SetContainer(containerRect(size), r.canvas.fitPending.Swap(false))
}

func (r *maskCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *maskCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *maskCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *maskCanvasRenderer) Destroy() {}
