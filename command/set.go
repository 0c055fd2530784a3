// Package command implements the registry of enabled and disabled
// command identifiers shared between the router and the views.
package command

// Capacity is the number of command ids that participate in
// enable/disable tracking. Ids at or above Capacity follow the legacy
// rule for unrestricted commands: they always read as enabled and
// writes to them are no-ops.
const Capacity = 256

// Set is a bitfield of enabled commands plus a change flag. It is
// created once at session start, owned by the session object, and
// handed by reference to every view; there is no ambient global. The
// single-threaded loop means no locking is required.
type Set struct {
	bits    [Capacity / 64]uint64
	changed bool
}

// NewSet returns a Set with every command enabled except the ids in
// blacklist (commands that make no sense before any window exists,
// such as close). The change flag starts clear.
func NewSet(blacklist ...uint16) *Set {
	s := &Set{}
	for i := range s.bits {
		s.bits[i] = ^uint64(0)
	}
	for _, id := range blacklist {
		if id < Capacity {
			s.bits[id/64] &^= 1 << (id % 64)
		}
	}
	return s
}

// Enabled reports whether id is currently enabled. Ids at or above
// Capacity are always enabled.
func (s *Set) Enabled(id uint16) bool {
	if id >= Capacity {
		return true
	}
	return s.bits[id/64]&(1<<(id%64)) != 0
}

// Enable marks id enabled. The change flag is set only on an actual
// transition; enabling an already-enabled id does nothing.
func (s *Set) Enable(id uint16) {
	if id >= Capacity || s.Enabled(id) {
		return
	}
	s.bits[id/64] |= 1 << (id % 64)
	s.changed = true
}

// Disable marks id disabled, setting the change flag only on an
// actual transition.
func (s *Set) Disable(id uint16) {
	if id >= Capacity || !s.Enabled(id) {
		return
	}
	s.bits[id/64] &^= 1 << (id % 64)
	s.changed = true
}

// Changed reports whether any id transitioned since the last
// ClearChanged. The router polls this once per idle pass to decide
// whether to broadcast a command-set-changed notification.
func (s *Set) Changed() bool {
	return s.changed
}

// ClearChanged resets the change flag. Only the router calls this,
// after the broadcast has reached every top-level view.
func (s *Set) ClearChanged() {
	s.changed = false
}
