// Package tool implements the editor's input state machine: pointer, wheel
// and keyboard events are turned into brush strokes, pans, zooms and
// session changes.
package tool

import (
	"log"
	"math"

	"rgbyp-maskeditor/internal/automask"
	"rgbyp-maskeditor/internal/brush"
	"rgbyp-maskeditor/internal/session"
	"rgbyp-maskeditor/pkg/colorutil"
	"rgbyp-maskeditor/pkg/geometry"
)

// State is the pointer interaction state.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StatePanning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDrawing:
		return "Drawing"
	case StatePanning:
		return "Panning"
	default:
		return "Unknown"
	}
}

// Button is a pointer button number.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// Buttons is the set of pointer buttons held during a move.
type Buttons uint8

const (
	HeldPrimary   Buttons = 1 << 0
	HeldSecondary Buttons = 1 << 1
	HeldMiddle    Buttons = 1 << 2
)

// Step sizes.
const (
	OpacityStep = 0.05
)

// Notifier receives session change events from the machine.
type Notifier func(event session.EventType, data interface{})

// Machine routes input events for one session. It is not safe for
// concurrent use; callers serialize events.
type Machine struct {
	sess   *session.Session
	brush  *brush.Renderer
	notify Notifier

	state     State
	panStart  geometry.Point2D
	panScroll geometry.Point2D
}

// New creates a machine for sess. notify may be nil.
func New(sess *session.Session, notify Notifier) *Machine {
	if notify == nil {
		notify = func(session.EventType, interface{}) {}
	}
	return &Machine{
		sess:   sess,
		brush:  brush.NewRenderer(),
		notify: notify,
	}
}

// Session returns the session the machine drives.
func (m *Machine) Session() *session.Session {
	return m.sess
}

// State returns the current interaction state.
func (m *Machine) State() State {
	return m.state
}

// EffectiveTool is the tool a pointer-down would use: Pan while the space
// override is held, the persistent tool otherwise.
func (m *Machine) EffectiveTool() session.Tool {
	if m.sess.SpaceHeld {
		return session.ToolPan
	}
	return m.sess.Tool
}

// PointerDown handles a button press at screen point p.
func (m *Machine) PointerDown(p geometry.Point2D, button Button) {
	m.trackCursor(p)
	if m.state != StateIdle {
		return
	}

	if m.EffectiveTool() == session.ToolPan {
		if button != ButtonPrimary {
			return
		}
		m.state = StatePanning
		m.sess.Panning = true
		m.panStart = p
		m.panScroll = m.sess.View.Scroll
		return
	}

	if button != ButtonPrimary && button != ButtonSecondary {
		return
	}
	q := m.sess.View.ScreenToImage(p)
	if !m.sess.View.InImage(q) {
		return
	}

	mode := brush.ModePaint
	if m.sess.Tool == session.ToolErase || button == ButtonSecondary {
		mode = brush.ModeErase
	}
	m.state = StateDrawing
	m.sess.Drawing = true
	dirty := m.brush.Begin(m.sess.Model.Mask(), q, mode, colorutil.PaletteColor(m.sess.ColorIndex), m.sess.BrushSize)
	m.notify(session.EventMaskChanged, dirty)
}

// PointerMove handles pointer motion with the given buttons held.
func (m *Machine) PointerMove(p geometry.Point2D, held Buttons) {
	m.trackCursor(p)
	switch m.state {
	case StateDrawing:
		if held&(HeldPrimary|HeldSecondary) == 0 {
			m.endStroke()
			return
		}
		dirty := m.brush.Extend(m.sess.View.ScreenToImage(p))
		if !dirty.Empty() {
			m.notify(session.EventMaskChanged, dirty)
		}
	case StatePanning:
		if held&HeldPrimary == 0 {
			m.endPan()
			return
		}
		m.sess.View.PanFrom(m.panStart, m.panScroll, p)
		m.notify(session.EventViewChanged, nil)
	}
}

// PointerUp ends any stroke or pan in progress.
func (m *Machine) PointerUp(p geometry.Point2D, button Button) {
	m.trackCursor(p)
	m.release()
}

// PointerLeave ends any stroke or pan in progress and hides the cursor.
func (m *Machine) PointerLeave() {
	m.sess.HasCursor = false
	m.release()
	m.notify(session.EventViewChanged, nil)
}

// Wheel zooms at the cursor. Negative deltaY zooms in.
func (m *Machine) Wheel(p geometry.Point2D, deltaY float64) {
	m.trackCursor(p)
	if deltaY == 0 || math.IsNaN(deltaY) {
		return
	}
	sign := 1
	if deltaY > 0 {
		sign = -1
	}
	if m.sess.View.ZoomAt(p, sign) {
		m.notify(session.EventViewChanged, nil)
	}
}

func (m *Machine) release() {
	switch m.state {
	case StateDrawing:
		m.endStroke()
	case StatePanning:
		m.endPan()
	}
}

func (m *Machine) endStroke() {
	m.brush.End()
	m.state = StateIdle
	m.sess.Drawing = false
}

func (m *Machine) endPan() {
	m.state = StateIdle
	m.sess.Panning = false
}

func (m *Machine) trackCursor(p geometry.Point2D) {
	m.sess.Cursor = p
	m.sess.HasCursor = true
}

// SetTool sets the persistent tool.
func (m *Machine) SetTool(t session.Tool) {
	if m.sess.Tool == t {
		return
	}
	m.sess.Tool = t
	m.notify(session.EventToolChanged, t)
}

// SetColor selects a palette color.
func (m *Machine) SetColor(index int) {
	m.sess.ColorIndex = colorutil.ClampIndex(index)
	m.notify(session.EventToolChanged, m.sess.ColorIndex)
}

// SetBrushSize sets the brush diameter in image pixels, clamped.
func (m *Machine) SetBrushSize(size int) {
	m.sess.BrushSize = session.ClampBrushSize(size)
	m.notify(session.EventToolChanged, m.sess.BrushSize)
}

// StepBrushSize grows (dir > 0) or shrinks the brush by a size-dependent
// step: 1 below 20, 3 below 100, 5 above.
func (m *Machine) StepBrushSize(dir int) {
	size := m.sess.BrushSize
	step := 5
	switch {
	case size < 20:
		step = 1
	case size < 100:
		step = 3
	}
	if dir < 0 {
		step = -step
	}
	m.SetBrushSize(size + step)
}

// SetOpacity sets the mask opacity, clamped to [0,1].
func (m *Machine) SetOpacity(opacity float64) {
	m.sess.Model.SetOpacity(opacity)
	m.notify(session.EventMaskChanged, nil)
}

// StepOpacity raises (dir > 0) or lowers the opacity by OpacityStep.
func (m *Machine) StepOpacity(dir int) {
	v := m.sess.Model.Opacity()
	if dir < 0 {
		v -= OpacityStep
	} else {
		v += OpacityStep
	}
	// Round to hundredths so repeated steps land on exact values.
	m.SetOpacity(math.Round(v*100) / 100)
}

// ApplyAutoMask fills the mask with preset i and makes i the current
// preset, so the cycle hotkey continues from it.
func (m *Machine) ApplyAutoMask(i int) {
	if err := automask.Apply(m.sess.Model, i); err != nil {
		log.Printf("Auto-mask: %v", err)
		return
	}
	m.sess.AutoMask = i
	m.brush.Rebase()
	m.notify(session.EventMaskChanged, nil)
}

// CycleAutoMask applies the preset after the current one.
func (m *Machine) CycleAutoMask() {
	m.ApplyAutoMask(automask.Next(m.sess.AutoMask))
}

// ClearMask erases the whole mask.
func (m *Machine) ClearMask() {
	m.sess.Model.ClearMask()
	m.brush.Rebase()
	m.notify(session.EventMaskChanged, nil)
}

// ZoomAtCenter zooms in (dir > 0) or out around the container center.
func (m *Machine) ZoomAtCenter(dir int) {
	if m.sess.View.ZoomAtCenter(dir) {
		m.notify(session.EventViewChanged, nil)
	}
}

// ResetView fits the image into the container.
func (m *Machine) ResetView() {
	m.sess.View.Fit()
	m.notify(session.EventViewChanged, nil)
}
