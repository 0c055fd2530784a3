package event

import (
	"time"

	"github.com/tvision-go/tvision/geom"
)

// Mouse button bits, as reported in MouseEvent.Buttons.
const (
	ButtonLeft   uint8 = 1 << 0
	ButtonMiddle uint8 = 1 << 1
	ButtonRight  uint8 = 1 << 2
)

// MouseEvent is the payload of the mouse event tags. Pos is 0-based
// cell coordinates. DoubleClick is derived by a ClickDetector, never
// transmitted on the wire.
type MouseEvent struct {
	Pos         geom.Point
	Buttons     uint8
	DoubleClick bool
}

// DefaultClickWindow is the time span within which two presses at the
// same position count as a double click.
const DefaultClickWindow = 500 * time.Millisecond

// ClickDetector derives double clicks from successive MouseDown
// events. Positions must match exactly and the second press must land
// within Window of the first. The zero value uses DefaultClickWindow.
type ClickDetector struct {
	Window time.Duration

	last   geom.Point
	lastAt time.Time
	primed bool
}

// IsDouble records a MouseDown at pos occurring at the given time and
// reports whether it completes a double click. A completed double
// click re-arms from scratch, so a triple click counts as one double
// plus one single.
func (d *ClickDetector) IsDouble(pos geom.Point, at time.Time) bool {
	w := d.Window
	if w == 0 {
		w = DefaultClickWindow
	}

	double := d.primed && pos == d.last && at.Sub(d.lastAt) <= w
	d.primed = !double
	d.last = pos
	d.lastAt = at
	return double
}
