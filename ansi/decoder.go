// Package ansi decodes the terminal wire protocol: C0 controls, CSI
// and SS3 key sequences, tilde-form function keys, X10 and SGR mouse
// reports, and UTF-8 text. The decoder is incremental; bytes may
// arrive split at arbitrary boundaries and incomplete sequences are
// retained until the next feed.
package ansi

import (
	"unicode/utf8"

	pdebug "github.com/lestrrat-go/pdebug"

	"github.com/tvision-go/tvision/event"
	"github.com/tvision-go/tvision/geom"
)

// Decoder turns a byte stream into events. The zero value is ready to
// use. Decoder is not safe for concurrent use; each session owns one.
type Decoder struct {
	buf []byte
}

// Feed appends p to the internal buffer and drains every complete
// event from it. A sequence cut off at the end of the buffer is kept
// for the next call, so splitting input at any byte boundary produces
// the same events as feeding it whole.
func (d *Decoder) Feed(p []byte) []event.Event {
	if pdebug.Enabled {
		g := pdebug.Marker("ansi.Decoder.Feed %d bytes (%d buffered)", len(p), len(d.buf))
		defer g.End()
	}

	d.buf = append(d.buf, p...)

	var evs []event.Event
	for {
		ev, n := d.decodeOne()
		if n == 0 {
			break
		}
		d.buf = d.buf[n:]
		if ev.What != event.Nothing {
			evs = append(evs, ev)
		}
	}
	return evs
}

// Pending reports whether undecoded bytes remain buffered.
func (d *Decoder) Pending() bool {
	return len(d.buf) > 0
}

// ResolveEsc consumes a buffered lone ESC and returns it as a plain
// ESC key press. Callers invoke this when the follow-up window for an
// escape sequence has expired without further bytes. It returns false
// when the buffer does not hold exactly one ESC byte.
func (d *Decoder) ResolveEsc() (event.Event, bool) {
	if len(d.buf) != 1 || d.buf[0] != 0x1B {
		return event.Event{}, false
	}
	d.buf = d.buf[:0]
	return event.NewKey(event.KeyEsc, event.ModNone), true
}

// decodeOne decodes a single event from the front of the buffer. It
// returns the number of bytes consumed; zero means more data is
// needed. A consumed count with a Nothing event means the bytes were
// unrecoverable garbage and were skipped.
func (d *Decoder) decodeOne() (event.Event, int) {
	if len(d.buf) == 0 {
		return event.Event{}, 0
	}

	b := d.buf[0]
	switch {
	case b == 0x1B:
		return d.decodeEscape()
	case b == 0x0D:
		return event.NewKey(event.KeyEnter, event.ModNone), 1
	case b == 0x09:
		return event.NewKey(event.KeyTab, event.ModNone), 1
	case b == 0x7F || b == 0x08:
		return event.NewKey(event.KeyBack, event.ModNone), 1
	case b >= 0x01 && b <= 0x1A:
		// Ctrl+letter: the code is the literal control byte.
		return event.NewKey(event.KeyCode(b), event.ModCtrl), 1
	case b < 0x20:
		// Remaining C0 bytes have no binding; report the unknown-key
		// code rather than dropping input on the floor.
		return event.NewKey(event.KeyNone, event.ModNone), 1
	default:
		return d.decodeText()
	}
}

func (d *Decoder) decodeText() (event.Event, int) {
	if !utf8.FullRune(d.buf) {
		if len(d.buf) < utf8.UTFMax {
			return event.Event{}, 0 // need more data
		}
		// 4+ bytes buffered and still not a rune: skip one byte of
		// unrecoverable garbage.
		return event.Event{}, 1
	}

	r, size := utf8.DecodeRune(d.buf)
	if r == utf8.RuneError && size == 1 {
		if len(d.buf) < utf8.UTFMax {
			return event.Event{}, 0
		}
		return event.Event{}, 1
	}
	return event.NewRune(r, event.ModNone), size
}

func (d *Decoder) decodeEscape() (event.Event, int) {
	if len(d.buf) < 2 {
		return event.Event{}, 0 // lone ESC: wait for ResolveEsc or more bytes
	}

	switch c := d.buf[1]; {
	case c == '[':
		return d.decodeCSI()
	case c == 'O':
		return d.decodeSS3()
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		// Alt emulation used by terminals that cannot send a true
		// Meta modifier.
		if k, ok := event.AltLetter(rune(c)); ok {
			return event.NewKey(k, event.ModAlt), 2
		}
		return event.NewKey(event.KeyEsc, event.ModNone), 1
	default:
		return event.NewKey(event.KeyEsc, event.ModNone), 1
	}
}

// csiFinal reports whether b terminates a CSI sequence.
func csiFinal(b byte) bool {
	return b >= 0x40 && b <= 0x7E
}

func (d *Decoder) decodeCSI() (event.Event, int) {
	if len(d.buf) < 3 {
		return event.Event{}, 0
	}

	switch d.buf[2] {
	case '<':
		return d.decodeSGRMouse()
	case 'M':
		return d.decodeX10Mouse()
	}

	// Generic CSI: scan for the final byte, collecting the
	// ;-separated parameter field in front of it.
	i := 2
	for ; i < len(d.buf); i++ {
		if csiFinal(d.buf[i]) {
			break
		}
	}
	if i == len(d.buf) {
		return event.Event{}, 0 // terminator not buffered yet
	}

	params := parseParams(d.buf[2:i])
	final := d.buf[i]
	consumed := i + 1

	mod := event.ModNone
	if len(params) >= 2 && params[1] > 0 {
		mod = event.Modifier(params[1] - 1)
	}

	var code event.KeyCode
	switch final {
	case 'A':
		code = event.KeyUp
	case 'B':
		code = event.KeyDown
	case 'C':
		code = event.KeyRight
	case 'D':
		code = event.KeyLeft
	case 'H':
		code = event.KeyHome
	case 'F':
		code = event.KeyEnd
	case 'Z':
		code = event.KeyShiftTab
		mod |= event.ModShift
	case '~':
		code = tildeKey(params)
	default:
		code = event.KeyNone // unsupported sequence, recoverable
	}
	return event.NewKey(code, mod), consumed
}

// tildeKey maps the numeric code of an "ESC [ n ~" sequence.
func tildeKey(params []int) event.KeyCode {
	if len(params) == 0 {
		return event.KeyNone
	}
	switch params[0] {
	case 1:
		return event.KeyHome
	case 2:
		return event.KeyIns
	case 3:
		return event.KeyDel
	case 4:
		return event.KeyEnd
	case 5:
		return event.KeyPgUp
	case 6:
		return event.KeyPgDn
	case 11:
		return event.KeyF1
	case 12:
		return event.KeyF2
	case 13:
		return event.KeyF3
	case 14:
		return event.KeyF4
	case 15:
		return event.KeyF5
	case 17:
		return event.KeyF6
	case 18:
		return event.KeyF7
	case 19:
		return event.KeyF8
	case 20:
		return event.KeyF9
	case 21:
		return event.KeyF10
	case 23:
		return event.KeyF11
	case 24:
		return event.KeyF12
	}
	return event.KeyNone
}

func (d *Decoder) decodeSS3() (event.Event, int) {
	if len(d.buf) < 3 {
		return event.Event{}, 0
	}
	final := d.buf[2]
	if !csiFinal(final) {
		return event.NewKey(event.KeyNone, event.ModNone), 3
	}

	var code event.KeyCode
	switch final {
	case 'A':
		code = event.KeyUp
	case 'B':
		code = event.KeyDown
	case 'C':
		code = event.KeyRight
	case 'D':
		code = event.KeyLeft
	case 'H':
		code = event.KeyHome
	case 'F':
		code = event.KeyEnd
	case 'P':
		code = event.KeyF1
	case 'Q':
		code = event.KeyF2
	case 'R':
		code = event.KeyF3
	case 'S':
		code = event.KeyF4
	default:
		code = event.KeyNone
	}
	return event.NewKey(code, event.ModNone), 3
}

// decodeSGRMouse parses "ESC [ < Cb ; Cx ; Cy (M|m)". Coordinates are
// 1-based on the wire and converted to 0-based here.
func (d *Decoder) decodeSGRMouse() (event.Event, int) {
	i := 3
	for ; i < len(d.buf); i++ {
		if c := d.buf[i]; c == 'M' || c == 'm' {
			break
		} else if (c < '0' || c > '9') && c != ';' {
			// Not a mouse report after all; skip the introducer.
			return event.Event{}, 3
		}
	}
	if i == len(d.buf) {
		return event.Event{}, 0
	}

	params := parseParams(d.buf[3:i])
	if len(params) < 3 {
		return event.Event{}, i + 1
	}
	cb, cx, cy := params[0], params[1], params[2]
	pressed := d.buf[i] == 'M'
	consumed := i + 1

	pos := geom.Pt(cx-1, cy-1)
	switch {
	case cb&0x40 != 0:
		what := event.MouseWheelUp
		if cb&0x01 != 0 {
			what = event.MouseWheelDown
		}
		return event.NewMouse(what, pos, 0), consumed
	case cb&0x20 != 0:
		return event.NewMouse(event.MouseMove, pos, mouseButton(cb&0x03)), consumed
	case pressed:
		return event.NewMouse(event.MouseDown, pos, mouseButton(cb&0x03)), consumed
	default:
		return event.NewMouse(event.MouseUp, pos, mouseButton(cb&0x03)), consumed
	}
}

// decodeX10Mouse parses the fixed 6-byte "ESC [ M Cb Cx Cy" frame,
// each component offset by 32.
func (d *Decoder) decodeX10Mouse() (event.Event, int) {
	if len(d.buf) < 6 {
		return event.Event{}, 0
	}
	cb := int(d.buf[3]) - 32
	cx := int(d.buf[4]) - 32
	cy := int(d.buf[5]) - 32

	pos := geom.Pt(cx-1, cy-1)
	switch {
	case cb&0x40 != 0:
		what := event.MouseWheelUp
		if cb&0x01 != 0 {
			what = event.MouseWheelDown
		}
		return event.NewMouse(what, pos, 0), 6
	case cb&0x20 != 0:
		return event.NewMouse(event.MouseMove, pos, mouseButton(cb&0x03)), 6
	case cb&0x03 == 3:
		return event.NewMouse(event.MouseUp, pos, 0), 6
	default:
		return event.NewMouse(event.MouseDown, pos, mouseButton(cb&0x03)), 6
	}
}

func mouseButton(cb int) uint8 {
	switch cb {
	case 0:
		return event.ButtonLeft
	case 1:
		return event.ButtonMiddle
	case 2:
		return event.ButtonRight
	}
	return 0
}

// parseParams splits a ;-separated decimal parameter field. Empty
// components parse as zero, matching terminal behavior.
func parseParams(p []byte) []int {
	params := []int{0}
	for _, c := range p {
		switch {
		case c >= '0' && c <= '9':
			params[len(params)-1] = params[len(params)-1]*10 + int(c-'0')
		case c == ';':
			params = append(params, 0)
		}
	}
	return params
}
