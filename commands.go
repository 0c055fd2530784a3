package tvision

// Standard command ids. Values below MaxTerminalCommand terminate a
// modal loop when produced inside one; values at or above it are
// internal signals between a dialog's own children.
const (
	CmValid uint16 = iota
	CmQuit
	CmError
	CmMenu
	CmClose
	CmZoom
	CmResize
	CmNext
	CmPrev
	CmHelp
	CmOK
	CmCancel
	CmYes
	CmNo
	CmDefault
)

// Broadcast command ids.
const (
	CmReceivedFocus uint16 = iota + 50
	CmReleasedFocus
	CmCommandSetChanged
)

// MaxTerminalCommand is the boundary between commands that end a modal
// loop and dialog-internal signals.
const MaxTerminalCommand uint16 = 1000

// windowCommands are disabled at session start; they make no sense
// until a window exists to act on.
var windowCommands = []uint16{CmClose, CmZoom, CmResize, CmNext, CmPrev}
