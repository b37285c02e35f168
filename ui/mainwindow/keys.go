package mainwindow

import (
	"rgbyp-maskeditor/internal/tool"

	"fyne.io/fyne/v2"
)

const shortcutHelp = `1-5        select red, green, blue, yellow, pink
Space      hold to pan
Wheel      zoom at pointer
Right drag erase
Shift+Z/X  zoom out / in
Shift+C    reset view
Shift+N    clear mask
Shift+V    next auto-mask preset
Shift+A/D  smaller / larger brush
Shift+S/W  lower / raise mask opacity
Enter      save and close
Escape     close without saving`

// keyCode maps a fyne key name to the physical key code the tool machine
// understands, such as "Digit1", "KeyA" or "Space".
func keyCode(name fyne.KeyName) string {
	switch name {
	case fyne.KeySpace:
		return "Space"
	case fyne.KeyEscape:
		return "Escape"
	case fyne.KeyReturn, fyne.KeyEnter:
		return "Enter"
	}
	s := string(name)
	if len(s) == 1 {
		switch c := s[0]; {
		case c >= '0' && c <= '9':
			return "Digit" + s
		case c >= 'A' && c <= 'Z':
			return "Key" + s
		}
	}
	return s
}

func toolKey(name fyne.KeyName, mods fyne.KeyModifier) tool.Key {
	return tool.Key{
		Code:  keyCode(name),
		Shift: mods&fyne.KeyModifierShift != 0,
		Alt:   mods&fyne.KeyModifierAlt != 0,
		Meta:  mods&fyne.KeyModifierSuper != 0,
	}
}

// keyEvent is a key press or release waiting to reach the editor.
type keyEvent struct {
	key tool.Key
	up  bool
}

// keyQueue delivers key events to handle one at a time, in the order they
// were pushed.
type keyQueue struct {
	events chan keyEvent
}

func newKeyQueue(handle func(keyEvent)) *keyQueue {
	q := &keyQueue{events: make(chan keyEvent, 64)}
	go func() {
		for ev := range q.events {
			handle(ev)
		}
	}()
	return q
}

func (q *keyQueue) push(ev keyEvent) {
	q.events <- ev
}
