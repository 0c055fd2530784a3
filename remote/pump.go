// Package remote feeds a channel backend from an asynchronous
// transport: raw bytes in, decoded events out, with the terminal size
// updated out-of-band. The SSH glue in this package adapts one SSH
// session channel into that shape.
package remote

import (
	"context"
	"io"
	"time"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"

	"github.com/tvision-go/tvision/ansi"
	"github.com/tvision-go/tvision/event"
)

// Pump runs raw bytes from a reader through the input decoder and
// delivers event batches to the consumer side of a channel backend.
// One Feed worth of bytes becomes one batch so ordering survives the
// async boundary.
type Pump struct {
	dec       ansi.Decoder
	events    chan []event.Event
	escWindow time.Duration
}

// NewPump constructs a pump. escWindow bounds how long a trailing lone
// ESC is held before being resolved to a plain ESC key; zero selects
// the default window.
func NewPump(escWindow time.Duration) *Pump {
	if escWindow <= 0 {
		escWindow = ansi.DefaultEscWindow
	}
	return &Pump{
		events:    make(chan []event.Event, 8),
		escWindow: escWindow,
	}
}

// Events is the channel handed to backend.NewChannel. It is closed
// when Run returns, which the backend reports as a disconnect.
func (p *Pump) Events() <-chan []event.Event {
	return p.events
}

// Run reads r until error or ctx cancellation. It returns nil on a
// clean EOF; any other read failure is returned wrapped. The events
// channel is closed on the way out in every case.
func (p *Pump) Run(ctx context.Context, r io.Reader) error {
	defer close(p.events)

	type chunk struct {
		data []byte
		err  error
	}
	chunks := make(chan chunk)
	go func() {
		defer close(chunks)
		for {
			buf := make([]byte, 4096)
			n, err := r.Read(buf)
			select {
			case chunks <- chunk{data: buf[:n], err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var escTimer *time.Timer
	var escC <-chan time.Time
	stopTimer := func() {
		if escTimer != nil {
			escTimer.Stop()
			escTimer = nil
			escC = nil
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-escC:
			stopTimer()
			if ev, ok := p.dec.ResolveEsc(); ok {
				if err := p.deliver(ctx, []event.Event{ev}); err != nil {
					return err
				}
			}
		case c, ok := <-chunks:
			if !ok {
				return nil
			}
			if len(c.data) > 0 {
				if evs := p.dec.Feed(c.data); len(evs) > 0 {
					if err := p.deliver(ctx, evs); err != nil {
						return err
					}
				}
				stopTimer()
				if p.dec.Pending() {
					// Possibly a sequence cut off mid-read; a lone
					// ESC that sees no continuation inside the
					// window is a real ESC press.
					escTimer = time.NewTimer(p.escWindow)
					escC = escTimer.C
				}
			}
			if c.err != nil {
				if errors.Is(c.err, io.EOF) {
					return nil
				}
				return errors.Wrap(c.err, "failed to read from remote transport")
			}
		}
	}
}

func (p *Pump) deliver(ctx context.Context, evs []event.Event) error {
	if pdebug.Enabled {
		pdebug.Printf("remote.Pump: delivering %d events", len(evs))
	}
	select {
	case p.events <- evs:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
