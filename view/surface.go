package view

import (
	"bytes"
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"

	"github.com/tvision-go/tvision/backend"
	"github.com/tvision-go/tvision/geom"
)

// Cell is one screen cell: a rune plus a DOS-style attribute byte
// (background color in the high nibble, foreground in the low).
type Cell struct {
	Ch   rune
	Attr uint8
}

// Surface is the cell buffer a view draws into. A Surface may be a
// clipped, offset window onto a parent's cells (see Sub), so children
// draw in their own coordinate space.
type Surface struct {
	cells  []Cell
	stride int
	off    geom.Point
	clip   geom.Rect
}

// NewSurface allocates a w by h surface filled with spaces.
func NewSurface(w, h int) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	cells := make([]Cell, w*h)
	for i := range cells {
		cells[i].Ch = ' '
	}
	return &Surface{
		cells:  cells,
		stride: w,
		clip:   geom.NewRect(0, 0, w, h),
	}
}

// Size returns the drawable width and height of this surface.
func (s *Surface) Size() (int, int) {
	return s.clip.ClampedWidth(), s.clip.ClampedHeight()
}

// Sub returns a surface sharing the same cells, translated so r.A is
// the new origin and clipped to r.
func (s *Surface) Sub(r geom.Rect) *Surface {
	abs := r.Move(s.off.X, s.off.Y)
	return &Surface{
		cells:  s.cells,
		stride: s.stride,
		off:    abs.A,
		clip:   abs.Intersect(s.clip),
	}
}

// Put writes a single cell at (x, y) in surface coordinates. Writes
// outside the clip region are discarded.
func (s *Surface) Put(x, y int, ch rune, attr uint8) {
	ax, ay := x+s.off.X, y+s.off.Y
	if ax < s.clip.A.X || ax >= s.clip.B.X || ay < s.clip.A.Y || ay >= s.clip.B.Y {
		return
	}
	s.cells[ay*s.stride+ax] = Cell{Ch: ch, Attr: attr}
}

// Print draws msg starting at (x, y), advancing by display width, and
// returns the number of cells written. Wide runes occupy their full
// width.
func (s *Surface) Print(x, y int, attr uint8, msg string) int {
	written := 0
	for _, c := range msg {
		s.Put(x, y, c, attr)
		n := runewidth.RuneWidth(c)
		if n < 1 {
			n = 1
		}
		x += n
		written += n
	}
	return written
}

// Fill paints every cell of r with ch and attr.
func (s *Surface) Fill(r geom.Rect, ch rune, attr uint8) {
	for y := r.A.Y; y < r.B.Y; y++ {
		for x := r.A.X; x < r.B.X; x++ {
			s.Put(x, y, ch, attr)
		}
	}
}

// attrSGR renders a DOS attribute byte as an SGR sequence using the
// 16-color ANSI palette.
func attrSGR(attr uint8) string {
	fg := attr & 0x0F
	bg := attr >> 4
	fgCode := 30 + int(fg&0x07)
	if fg&0x08 != 0 {
		fgCode += 60
	}
	bgCode := 40 + int(bg&0x07)
	if bg&0x08 != 0 {
		bgCode += 60
	}
	return fmt.Sprintf("\x1b[%d;%dm", fgCode, bgCode)
}

// FlushTo writes the whole surface to a backend, row by row. The
// screen-diff writer is a separate component; this is the simple full
// repaint used by the core loop.
func (s *Surface) FlushTo(b backend.Backend) error {
	w, h := s.clip.ClampedWidth(), s.clip.ClampedHeight()
	var row bytes.Buffer
	last := uint8(0xFF)
	for y := 0; y < h; y++ {
		row.Reset()
		fmt.Fprintf(&row, "\x1b[%d;1H", y+1)
		for x := 0; x < w; x++ {
			c := s.cells[(y+s.clip.A.Y)*s.stride+x+s.clip.A.X]
			if c.Attr != last {
				row.WriteString(attrSGR(c.Attr))
				last = c.Attr
			}
			ch := c.Ch
			if ch == 0 {
				ch = ' '
			}
			row.WriteRune(ch)
			// A wide rune covers its continuation cell on the wire;
			// emitting that cell too would shift the rest of the row.
			if n := runewidth.RuneWidth(ch); n > 1 {
				x += n - 1
			}
		}
		if err := b.WriteRaw(row.Bytes()); err != nil {
			return errors.Wrap(err, "failed to write surface row")
		}
	}
	return nil
}
