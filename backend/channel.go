package backend

import (
	"bytes"
	"fmt"
	"io"
	"time"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"

	"github.com/tvision-go/tvision/event"
)

// sessionModes lists the terminal modes a remote session toggles, in
// activation order. Init sends the on strings front to back; Close
// sends the off strings back to front so modes unwind in exact reverse.
var sessionModes = []struct{ on, off string }{
	{"\x1b[?1049h", "\x1b[?1049l"}, // alternate screen
	{"\x1b[?1000h", "\x1b[?1000l"}, // mouse tracking
	{"\x1b[?1006h", "\x1b[?1006l"}, // SGR extended coordinates
	{"\x1b[?1002h", "\x1b[?1002l"}, // motion while pressed
	{"\x1b[?25l", "\x1b[?25h"},     // cursor hidden
	{"\x1b[?7l", "\x1b[?7h"},       // autowrap off
}

// Channel is a backend with no OS terminal of its own. Decoded events
// arrive over a channel fed by a remote transport (see package remote)
// and output is staged in a buffer until Flush pushes it into the
// outbound byte sink. The size cell is written out-of-band by the
// transport's resize notification.
type Channel struct {
	out     io.Writer
	events  <-chan []event.Event
	size    *SizeCell
	caps    Capabilities
	clicks  event.ClickDetector
	pending []event.Event
	buf     bytes.Buffer
	now     func() time.Time
}

// ChannelOption adjusts a Channel at construction time.
type ChannelOption func(*Channel)

// WithCapabilities overrides the negotiated capability set.
func WithCapabilities(caps Capabilities) ChannelOption {
	return func(c *Channel) { c.caps = caps }
}

// WithClickWindow sets the double-click detection window.
func WithClickWindow(d time.Duration) ChannelOption {
	return func(c *Channel) { c.clicks.Window = d }
}

// NewChannel constructs a channel backend around an outbound byte sink
// and an inbound event source. The event channel carries batches; one
// decoder feed may yield several events and they must be replayed in
// order across PollEvent calls.
func NewChannel(out io.Writer, events <-chan []event.Event, size *SizeCell, opts ...ChannelOption) *Channel {
	c := &Channel{
		out:    out,
		events: events,
		size:   size,
		caps:   Capabilities{Mouse: true, Color256: true},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init stages the session setup strings, in sessionModes order, and
// flushes them to the transport.
func (c *Channel) Init() error {
	for _, m := range sessionModes {
		c.buf.WriteString(m.on)
	}
	return errors.Wrap(c.Flush(), "failed to initialize remote session")
}

// Close unwinds the session modes in reverse activation order.
func (c *Channel) Close() error {
	for i := len(sessionModes) - 1; i >= 0; i-- {
		c.buf.WriteString(sessionModes[i].off)
	}
	return errors.Wrap(c.Flush(), "failed to tear down remote session")
}

func (c *Channel) Suspend() error { return c.Close() }
func (c *Channel) Resume() error  { return c.Init() }

func (c *Channel) Size() (int, int) {
	return c.size.Get()
}

// PollEvent drains a previously queued event first, then waits up to
// timeout for the next batch from the transport. A closed channel is a
// hard disconnect, not a transient empty condition.
func (c *Channel) PollEvent(timeout time.Duration) (event.Event, error) {
	if len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		return c.adorn(ev), nil
	}

	var (
		batch []event.Event
		ok    bool
	)
	if timeout <= 0 {
		select {
		case batch, ok = <-c.events:
		default:
			return event.Event{}, nil
		}
	} else {
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case batch, ok = <-c.events:
		case <-t.C:
			return event.Event{}, nil
		}
	}
	if !ok {
		return event.Event{}, ErrDisconnected
	}
	if len(batch) == 0 {
		return event.Event{}, nil
	}

	ev := batch[0]
	c.pending = append(c.pending, batch[1:]...)
	return c.adorn(ev), nil
}

// adorn applies consumer-side derivation: double-click marking on
// button presses.
func (c *Channel) adorn(ev event.Event) event.Event {
	if ev.What == event.MouseDown {
		ev.Mouse.DoubleClick = c.clicks.IsDouble(ev.Mouse.Pos, c.now())
	}
	return ev
}

func (c *Channel) WriteRaw(p []byte) error {
	c.buf.Write(p)
	return nil
}

// Flush pushes staged output to the transport. With nothing staged it
// is a no-op.
func (c *Channel) Flush() error {
	if c.buf.Len() == 0 {
		return nil
	}
	if pdebug.Enabled {
		pdebug.Printf("backend.Channel: flushing %d bytes", c.buf.Len())
	}
	_, err := c.out.Write(c.buf.Bytes())
	c.buf.Reset()
	if err != nil {
		return errors.Wrap(ErrDisconnected, err.Error())
	}
	return nil
}

func (c *Channel) ShowCursor(x, y int) {
	fmt.Fprintf(&c.buf, "\x1b[%d;%dH\x1b[?25h", y+1, x+1)
}

func (c *Channel) HideCursor() {
	c.buf.WriteString("\x1b[?25l")
}

func (c *Channel) Caps() Capabilities {
	return c.caps
}

func (c *Channel) CellAspect() (int, int) {
	return 2, 1
}

func (c *Channel) Bell() {
	c.buf.WriteString("\x07")
}

func (c *Channel) Clear() {
	c.buf.WriteString("\x1b[2J\x1b[H")
}
