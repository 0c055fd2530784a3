package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectSizes(t *testing.T) {
	r := NewRect(2, 3, 10, 8)
	assert.Equal(t, 8, r.Width())
	assert.Equal(t, 5, r.Height())
	assert.False(t, r.Empty())

	// A malformed rectangle reports its negative extent as-is, but the
	// clamped accessors floor at zero.
	m := NewRect(10, 8, 2, 3)
	assert.Equal(t, -8, m.Width())
	assert.Equal(t, 0, m.ClampedWidth())
	assert.Equal(t, 0, m.ClampedHeight())
	assert.True(t, m.Empty())
}

func TestRectContains(t *testing.T) {
	r := NewRect(2, 3, 10, 8)

	assert.True(t, r.Contains(Pt(2, 3)), "top-left corner is inclusive")
	assert.True(t, r.Contains(Pt(9, 7)))
	assert.False(t, r.Contains(Pt(10, 7)), "bottom-right corner is exclusive")
	assert.False(t, r.Contains(Pt(9, 8)))
	assert.False(t, r.Contains(Pt(1, 3)))
}

func TestRectContainsZeroExtent(t *testing.T) {
	// A zero-height rectangle still matches points on its row. Menu
	// bars and status lines are laid out this way.
	row := NewRect(0, 5, 80, 5)
	assert.True(t, row.Contains(Pt(10, 5)))
	assert.False(t, row.Contains(Pt(10, 4)))
	assert.False(t, row.Contains(Pt(10, 6)))

	col := NewRect(7, 0, 7, 20)
	assert.True(t, col.Contains(Pt(7, 3)))
	assert.False(t, col.Contains(Pt(8, 3)))

	pt := NewRect(4, 4, 4, 4)
	assert.True(t, pt.Contains(Pt(4, 4)))
	assert.False(t, pt.Contains(Pt(4, 5)))
}

func TestRectMoveGrow(t *testing.T) {
	r := NewRect(2, 3, 10, 8)

	assert.Equal(t, NewRect(5, 1, 13, 6), r.Move(3, -2))
	assert.Equal(t, NewRect(1, 2, 11, 9), r.Grow(1, 1))
	assert.Equal(t, NewRect(3, 4, 9, 7), r.Grow(-1, -1))
}

func TestRectIntersectUnion(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 15, 15)

	assert.Equal(t, NewRect(5, 5, 10, 10), a.Intersect(b))
	assert.Equal(t, NewRect(0, 0, 15, 15), a.Union(b))

	// Disjoint rectangles intersect to a malformed result.
	c := NewRect(20, 20, 30, 30)
	assert.True(t, a.Intersect(c).Empty())
}

func TestPointArithmetic(t *testing.T) {
	assert.Equal(t, Pt(5, 7), Pt(2, 3).Add(Pt(3, 4)))
	assert.Equal(t, Pt(-1, -1), Pt(2, 3).Sub(Pt(3, 4)))
}
