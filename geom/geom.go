package geom

// Point is a location on the screen, in cell coordinates. The origin
// is the top-left corner; X grows to the right and Y grows downward.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{x, y}
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is a rectangle described by two corner points. A is the
// top-left corner (inclusive), B is the bottom-right corner
// (exclusive).
type Rect struct {
	A Point
	B Point
}

// NewRect creates a Rect from the two corner coordinates.
func NewRect(ax, ay, bx, by int) Rect {
	return Rect{A: Pt(ax, ay), B: Pt(bx, by)}
}

// Width returns B.X - A.X. The result is negative for a malformed
// rectangle; use ClampedWidth when an unsigned size is required.
func (r Rect) Width() int {
	return r.B.X - r.A.X
}

// Height returns B.Y - A.Y. The result is negative for a malformed
// rectangle; use ClampedHeight when an unsigned size is required.
func (r Rect) Height() int {
	return r.B.Y - r.A.Y
}

// ClampedWidth returns the width floored at zero.
func (r Rect) ClampedWidth() int {
	if w := r.Width(); w > 0 {
		return w
	}
	return 0
}

// ClampedHeight returns the height floored at zero.
func (r Rect) ClampedHeight() int {
	if h := r.Height(); h > 0 {
		return h
	}
	return 0
}

// Contains reports whether p lies inside r. A zero-width or
// zero-height rectangle is treated as a single column, row, or point
// that matches on exact coordinates; single-row controls rely on this.
func (r Rect) Contains(p Point) bool {
	x := (p.X >= r.A.X && p.X < r.B.X) || (r.A.X == r.B.X && p.X == r.A.X)
	y := (p.Y >= r.A.Y && p.Y < r.B.Y) || (r.A.Y == r.B.Y && p.Y == r.A.Y)
	return x && y
}

// Move returns r translated by (dx, dy).
func (r Rect) Move(dx, dy int) Rect {
	return Rect{
		A: Pt(r.A.X+dx, r.A.Y+dy),
		B: Pt(r.B.X+dx, r.B.Y+dy),
	}
}

// Grow returns r expanded by dx cells on the left and right edges and
// dy cells on the top and bottom edges. Negative values shrink.
func (r Rect) Grow(dx, dy int) Rect {
	return Rect{
		A: Pt(r.A.X-dx, r.A.Y-dy),
		B: Pt(r.B.X+dx, r.B.Y+dy),
	}
}

// Intersect returns the overlapping region of r and s. The result may
// be malformed (negative width or height) when the two do not overlap.
func (r Rect) Intersect(s Rect) Rect {
	out := r
	if s.A.X > out.A.X {
		out.A.X = s.A.X
	}
	if s.A.Y > out.A.Y {
		out.A.Y = s.A.Y
	}
	if s.B.X < out.B.X {
		out.B.X = s.B.X
	}
	if s.B.Y < out.B.Y {
		out.B.Y = s.B.Y
	}
	return out
}

// Union returns the smallest rectangle covering both r and s.
func (r Rect) Union(s Rect) Rect {
	out := r
	if s.A.X < out.A.X {
		out.A.X = s.A.X
	}
	if s.A.Y < out.A.Y {
		out.A.Y = s.A.Y
	}
	if s.B.X > out.B.X {
		out.B.X = s.B.X
	}
	if s.B.Y > out.B.Y {
		out.B.Y = s.B.Y
	}
	return out
}

// Empty reports whether r covers no cells at all. Note that a
// zero-width rectangle still matches points in Contains; Empty is
// about drawable area.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}
