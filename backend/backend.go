// Package backend defines the capability contract every I/O transport
// implements, and the two concrete transports: the local terminal and
// the remote byte channel.
package backend

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tvision-go/tvision/event"
)

// ErrDisconnected is returned by a channel backend once its event
// source has closed. No further session activity is possible.
var ErrDisconnected = errors.New("backend: session disconnected")

// Capabilities describes what the attached terminal supports. It is
// queried once after Init and never mutated afterwards.
type Capabilities struct {
	Mouse          bool
	Color256       bool
	TrueColor      bool
	BracketedPaste bool
	FocusEvents    bool
	KittyKeyboard  bool
}

// Backend is the uniform contract between the event router and a
// terminal transport. Exactly one Backend instance drives one session;
// it is owned by the session object and never shared.
//
// Init and Close must be exact inverses: Init immediately followed by
// Close leaves the terminal in its original state. PollEvent never
// blocks longer than the requested timeout; an event with What ==
// event.Nothing means the timeout elapsed, not an error. Flush with no
// pending writes is a no-op.
type Backend interface {
	Init() error
	Close() error

	// Suspend and Resume temporarily release and reacquire the
	// terminal for shell-escape scenarios. The default behavior is a
	// Close/Init pair.
	Suspend() error
	Resume() error

	Size() (cols, rows int)
	PollEvent(timeout time.Duration) (event.Event, error)

	WriteRaw(p []byte) error
	Flush() error

	ShowCursor(x, y int)
	HideCursor()

	Caps() Capabilities

	// CellAspect returns the height:width proportion of one terminal
	// cell, used for proportionally correct decoration rendering.
	// Terminals are almost universally 2:1.
	CellAspect() (h, w int)

	Bell()
	Clear()
}

// SizeCell is the shared terminal-size slot used by a channel backend.
// The transport's out-of-band resize notification writes it from its
// own goroutine; the consumer loop reads it, so access is locked.
type SizeCell struct {
	mu sync.Mutex
	w  int
	h  int
}

// NewSizeCell returns a cell holding the given initial size.
func NewSizeCell(w, h int) *SizeCell {
	return &SizeCell{w: w, h: h}
}

func (c *SizeCell) Set(w, h int) {
	c.mu.Lock()
	c.w, c.h = w, h
	c.mu.Unlock()
}

func (c *SizeCell) Get() (w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}
