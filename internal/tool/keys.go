package tool

import (
	"rgbyp-maskeditor/internal/session"
)

// Key is a keyboard event. Code uses physical key names such as "Digit1",
// "KeyA", "Space", "Escape" and "Enter".
type Key struct {
	Code  string
	Shift bool
	Alt   bool
	Meta  bool
}

// Action is a request the editor host must carry out after a key press.
type Action int

const (
	ActionNone Action = iota
	ActionClose
	ActionSaveAndClose
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionClose:
		return "Close"
	case ActionSaveAndClose:
		return "SaveAndClose"
	default:
		return "Unknown"
	}
}

var colorKeys = map[string]int{
	"Digit1": 0,
	"Digit2": 1,
	"Digit3": 2,
	"Digit4": 3,
	"Digit5": 4,
}

// KeyDown handles a key press and reports whether it was consumed along
// with any action the host must perform.
func (m *Machine) KeyDown(k Key) (Action, bool) {
	if idx, ok := colorKeys[k.Code]; ok {
		if k.Alt || k.Meta {
			return ActionNone, false
		}
		m.SetColor(idx)
		return ActionNone, true
	}

	switch k.Code {
	case "Space":
		if !m.sess.SpaceHeld {
			m.sess.SpaceHeld = true
			m.notify(session.EventToolChanged, session.ToolPan)
		}
		return ActionNone, true
	case "Escape":
		return ActionClose, true
	case "Enter":
		return ActionSaveAndClose, true
	}

	if !k.Shift {
		return ActionNone, false
	}
	switch k.Code {
	case "KeyZ":
		m.ZoomAtCenter(-1)
	case "KeyX":
		m.ZoomAtCenter(1)
	case "KeyC":
		m.ResetView()
	case "KeyN":
		m.ClearMask()
	case "KeyV":
		m.CycleAutoMask()
	case "KeyA":
		m.StepBrushSize(-1)
	case "KeyD":
		m.StepBrushSize(1)
	case "KeyW":
		m.StepOpacity(1)
	case "KeyS":
		m.StepOpacity(-1)
	default:
		return ActionNone, false
	}
	return ActionNone, true
}

// KeyUp handles a key release. Releasing space ends the pan override; the
// persistent tool is unchanged.
func (m *Machine) KeyUp(k Key) bool {
	if k.Code != "Space" {
		return false
	}
	if m.sess.SpaceHeld {
		m.sess.SpaceHeld = false
		m.notify(session.EventToolChanged, m.sess.Tool)
	}
	return true
}
