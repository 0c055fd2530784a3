// Package view defines the capability contract the router dispatches
// events through, plus the minimal containers it needs: a state-flag
// base, a Group that owns children in z-order with a focus chain, and
// a Surface views draw into.
package view

import (
	"github.com/tvision-go/tvision/event"
	"github.com/tvision-go/tvision/geom"
)

// StateFlags records a view's runtime state bits.
type StateFlags uint16

const (
	StateVisible StateFlags = 1 << iota
	StateActive
	StateFocused
	StateDisabled
	StateModal
	StateDragging
)

// View is the closed capability set the router relies on. Handlers
// that act on an event must Clear it; leaving an event half-modified
// is a contract violation. Disabled views still receive Broadcast
// events so they can re-enable themselves.
type View interface {
	Bounds() geom.Rect
	SetBounds(geom.Rect)
	Draw(*Surface)
	HandleEvent(*event.Event)
	State() StateFlags
	SetState(flag StateFlags, on bool)
	CanFocus() bool
}

// PaletteOwner is optionally implemented by views that remap colors
// through an owner chain.
type PaletteOwner interface {
	Palette() []byte
}

// Base provides the bookkeeping shared by every concrete view; embed
// it and override what differs.
type Base struct {
	bounds geom.Rect
	state  StateFlags
}

// NewBase returns a visible Base covering r.
func NewBase(r geom.Rect) Base {
	return Base{bounds: r, state: StateVisible}
}

func (b *Base) Bounds() geom.Rect {
	return b.bounds
}

func (b *Base) SetBounds(r geom.Rect) {
	b.bounds = r
}

func (b *Base) State() StateFlags {
	return b.state
}

func (b *Base) SetState(flag StateFlags, on bool) {
	if on {
		b.state |= flag
	} else {
		b.state &^= flag
	}
}

func (b *Base) Draw(_ *Surface) {}

func (b *Base) HandleEvent(_ *event.Event) {}

func (b *Base) CanFocus() bool {
	return false
}

// Group is a container of child views stacked in z-order (last child
// is topmost). Keyboard and command events follow the focus chain;
// mouse events route positionally to the topmost hit; broadcasts fan
// out to every child, disabled ones included.
type Group struct {
	Base
	children []View
	focused  int
}

func NewGroup(r geom.Rect) *Group {
	return &Group{Base: NewBase(r), focused: -1}
}

// Insert places v on top of the stack and focuses it if it accepts
// focus.
func (g *Group) Insert(v View) {
	g.children = append(g.children, v)
	if v.CanFocus() {
		g.setFocus(len(g.children) - 1)
	}
}

// Remove detaches v. Focus moves to the topmost remaining focusable
// child.
func (g *Group) Remove(v View) {
	for i, c := range g.children {
		if c == v {
			if g.focused >= 0 && g.children[g.focused] == v {
				v.SetState(StateFocused, false)
				g.focused = -1
			}
			g.children = append(g.children[:i], g.children[i+1:]...)
			break
		}
	}
	if g.focused == -1 {
		for i := len(g.children) - 1; i >= 0; i-- {
			if g.focusable(i) {
				g.setFocus(i)
				break
			}
		}
	} else if g.focused >= len(g.children) {
		g.focused = len(g.children) - 1
	}
}

// Children returns the stack bottom to top. Callers must not mutate
// it.
func (g *Group) Children() []View {
	return g.children
}

// Focused returns the currently focused child, or nil.
func (g *Group) Focused() View {
	if g.focused < 0 || g.focused >= len(g.children) {
		return nil
	}
	return g.children[g.focused]
}

func (g *Group) focusable(i int) bool {
	c := g.children[i]
	return c.CanFocus() && c.State()&StateVisible != 0 && c.State()&StateDisabled == 0
}

func (g *Group) setFocus(i int) {
	if prev := g.Focused(); prev != nil {
		prev.SetState(StateFocused, false)
	}
	g.focused = i
	if next := g.Focused(); next != nil {
		next.SetState(StateFocused, true)
	}
}

// FocusNext moves focus to the next (or previous) focusable child,
// wrapping around. It reports whether focus moved.
func (g *Group) FocusNext(forward bool) bool {
	n := len(g.children)
	if n == 0 {
		return false
	}
	step := 1
	if !forward {
		step = n - 1
	}
	start := g.focused
	if start < 0 {
		start = n - 1
	}
	for i := (start + step) % n; i != start; i = (i + step) % n {
		if g.focusable(i) {
			g.setFocus(i)
			return true
		}
	}
	return false
}

// CanFocus reports whether any child can take focus.
func (g *Group) CanFocus() bool {
	for i := range g.children {
		if g.focusable(i) {
			return true
		}
	}
	return false
}

// HandleEvent routes one event through the group per the protocol:
// broadcasts to everyone, mouse positionally, everything else down the
// focus chain.
func (g *Group) HandleEvent(ev *event.Event) {
	switch {
	case ev.What == event.Broadcast:
		// Broadcasts reach every child regardless of state and are
		// not consumed along the way.
		for _, c := range g.children {
			c.HandleEvent(ev)
		}
	case ev.IsMouse():
		for i := len(g.children) - 1; i >= 0; i-- {
			c := g.children[i]
			if c.State()&StateVisible == 0 || c.State()&StateDisabled != 0 {
				continue
			}
			if c.Bounds().Contains(ev.Mouse.Pos) {
				// Descend in the child's coordinate space, mirroring
				// the translation Draw applies through Sub. The
				// original position comes back if the child leaves
				// the event unconsumed.
				orig := ev.Mouse.Pos
				ev.Mouse.Pos = orig.Sub(c.Bounds().A)
				c.HandleEvent(ev)
				if !ev.Consumed() {
					ev.Mouse.Pos = orig
				}
				return
			}
		}
	default:
		if f := g.Focused(); f != nil {
			f.HandleEvent(ev)
		}
	}
}

// Draw paints the children bottom to top, each clipped to its bounds.
func (g *Group) Draw(s *Surface) {
	for _, c := range g.children {
		if c.State()&StateVisible == 0 {
			continue
		}
		c.Draw(s.Sub(c.Bounds()))
	}
}
