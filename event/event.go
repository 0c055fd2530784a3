// Package event defines the typed events that flow from the input
// decoder and backends to the view hierarchy. It is deliberately free
// of terminal-library types so that everything above the backend layer
// stays decoupled from the transport.
package event

import "github.com/tvision-go/tvision/geom"

// What tags the active variant of an Event.
type What uint16

const (
	// Nothing marks a consumed (or absent) event. Routing stops as
	// soon as a handler clears an event to Nothing.
	Nothing What = iota
	// Keyboard carries a key press. The name avoids colliding with the
	// KeyDown scan code in the key table.
	Keyboard
	MouseDown
	MouseUp
	MouseMove
	// MouseAuto is a periodic repeat of a held-down button, used for
	// scroll-bar style press-and-hold behavior.
	MouseAuto
	MouseWheelUp
	MouseWheelDown
	// Command is a focused event carrying a 16-bit command id.
	Command
	// Broadcast is delivered to every registered top-level view
	// regardless of focus or enabled state.
	Broadcast
)

// KeyEvent is the payload of a Keyboard event. Code follows the legacy
// composite encoding; Ch carries the decoded rune for printable input
// (zero for special keys).
type KeyEvent struct {
	Code KeyCode
	Ch   rune
	Mod  Modifier
}

// Event is a tagged union. Exactly one payload field is meaningful,
// selected by What. Handlers that act on an event must Clear it.
type Event struct {
	What  What
	Key   KeyEvent
	Mouse MouseEvent
	Cmd   uint16
}

// Clear marks the event as consumed.
func (e *Event) Clear() {
	*e = Event{}
}

// Consumed reports whether the event has been handled.
func (e *Event) Consumed() bool {
	return e.What == Nothing
}

// IsMouse reports whether the event carries a mouse payload.
func (e *Event) IsMouse() bool {
	switch e.What {
	case MouseDown, MouseUp, MouseMove, MouseAuto, MouseWheelUp, MouseWheelDown:
		return true
	}
	return false
}

// NewKey constructs a Keyboard event for a special key.
func NewKey(code KeyCode, mod Modifier) Event {
	return Event{What: Keyboard, Key: KeyEvent{Code: code, Mod: mod}}
}

// NewRune constructs a Keyboard event for printable input. For runes
// that fit the low byte of the legacy encoding the code mirrors the
// character; wider runes carry code zero and rely on Ch.
func NewRune(ch rune, mod Modifier) Event {
	code := KeyNone
	if ch > 0 && ch < 0x100 {
		code = KeyCode(ch)
	}
	return Event{What: Keyboard, Key: KeyEvent{Code: code, Ch: ch, Mod: mod}}
}

// NewCommand constructs a focused Command event.
func NewCommand(id uint16) Event {
	return Event{What: Command, Cmd: id}
}

// NewBroadcast constructs a Broadcast event.
func NewBroadcast(id uint16) Event {
	return Event{What: Broadcast, Cmd: id}
}

// NewMouse constructs a mouse event of the given tag.
func NewMouse(what What, pos geom.Point, buttons uint8) Event {
	return Event{What: what, Mouse: MouseEvent{Pos: pos, Buttons: buttons}}
}
