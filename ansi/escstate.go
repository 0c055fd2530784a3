package ansi

import (
	"time"

	"github.com/tvision-go/tvision/event"
)

// DefaultEscWindow is how long a lone ESC press waits for a follow-up
// key before it is delivered as a plain ESC.
const DefaultEscWindow = 500 * time.Millisecond

// EscState disambiguates ESC presses for backends whose event source
// already delivers decoded keys (the local terminal). A first ESC is
// held; a second ESC inside the window becomes the double-ESC code, a
// letter inside the window becomes Alt+letter, and expiry releases the
// original ESC unchanged. Each backend instance owns its own EscState
// so concurrent sessions cannot interfere.
type EscState struct {
	// Window overrides DefaultEscWindow when non-zero.
	Window time.Duration

	pending bool
	at      time.Time
}

func (s *EscState) window() time.Duration {
	if s.Window != 0 {
		return s.Window
	}
	return DefaultEscWindow
}

// Track runs one decoded key event through the state machine and
// returns the events to deliver now, possibly none (ESC held back) or
// two (a stale held ESC followed by the new event).
func (s *EscState) Track(ev event.Event, now time.Time) []event.Event {
	if ev.What != event.Keyboard {
		return s.flushThen(ev, now)
	}

	if !s.pending {
		if ev.Key.Code == event.KeyEsc {
			s.pending = true
			s.at = now
			return nil
		}
		return []event.Event{ev}
	}

	if now.Sub(s.at) > s.window() {
		// The held ESC expired before this event arrived; release it
		// first, then start over with the new event.
		s.pending = false
		out := []event.Event{event.NewKey(event.KeyEsc, event.ModNone)}
		return append(out, s.Track(ev, now)...)
	}

	if ev.Key.Code == event.KeyEsc {
		s.pending = false
		return []event.Event{event.NewKey(event.KeyEscEsc, event.ModNone)}
	}
	if k, ok := event.AltLetter(ev.Key.Ch); ok && ev.Key.Mod == event.ModNone {
		s.pending = false
		return []event.Event{event.NewKey(k, event.ModAlt)}
	}

	// Non-qualifying follow-up: the ESC was a real ESC.
	s.pending = false
	return []event.Event{event.NewKey(event.KeyEsc, event.ModNone), ev}
}

// Expire releases the held ESC as a plain key press once the window
// has elapsed with no follow-up. Backends call this on poll timeouts.
func (s *EscState) Expire(now time.Time) (event.Event, bool) {
	if !s.pending || now.Sub(s.at) <= s.window() {
		return event.Event{}, false
	}
	s.pending = false
	return event.NewKey(event.KeyEsc, event.ModNone), true
}

// Pending reports whether an ESC is currently being held back.
func (s *EscState) Pending() bool {
	return s.pending
}

// flushThen handles non-key events: any held ESC cannot be part of a
// key chord anymore, so it is released ahead of the new event.
func (s *EscState) flushThen(ev event.Event, now time.Time) []event.Event {
	if s.pending {
		s.pending = false
		return []event.Event{event.NewKey(event.KeyEsc, event.ModNone), ev}
	}
	return []event.Event{ev}
}
