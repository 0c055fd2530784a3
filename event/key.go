package event

import "fmt"

// KeyCode is a 16-bit composite key value. The high byte holds the
// legacy scan code (function keys, arrows, Alt+letter), the low byte
// holds the ASCII or control character when one applies. The numeric
// values reproduce the DOS-era table exactly; existing key-binding
// tables depend on them, so they must never be renumbered.
type KeyCode uint16

// Modifier is a bitmask of modifier keys, matching the encoding of the
// CSI modifier parameter (value minus one).
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
)

const (
	KeyNone KeyCode = 0x0000

	// Ctrl+A..Ctrl+Z carry the literal control byte in the low byte.
	KeyCtrlA KeyCode = 0x0001
	KeyCtrlB KeyCode = 0x0002
	KeyCtrlC KeyCode = 0x0003
	KeyCtrlD KeyCode = 0x0004
	KeyCtrlE KeyCode = 0x0005
	KeyCtrlF KeyCode = 0x0006
	KeyCtrlG KeyCode = 0x0007
	KeyCtrlH KeyCode = 0x0008
	KeyCtrlI KeyCode = 0x0009
	KeyCtrlJ KeyCode = 0x000A
	KeyCtrlK KeyCode = 0x000B
	KeyCtrlL KeyCode = 0x000C
	KeyCtrlM KeyCode = 0x000D
	KeyCtrlN KeyCode = 0x000E
	KeyCtrlO KeyCode = 0x000F
	KeyCtrlP KeyCode = 0x0010
	KeyCtrlQ KeyCode = 0x0011
	KeyCtrlR KeyCode = 0x0012
	KeyCtrlS KeyCode = 0x0013
	KeyCtrlT KeyCode = 0x0014
	KeyCtrlU KeyCode = 0x0015
	KeyCtrlV KeyCode = 0x0016
	KeyCtrlW KeyCode = 0x0017
	KeyCtrlX KeyCode = 0x0018
	KeyCtrlY KeyCode = 0x0019
	KeyCtrlZ KeyCode = 0x001A

	KeyEsc       KeyCode = 0x011B
	KeyAltSpace  KeyCode = 0x0200
	KeyCtrlIns   KeyCode = 0x0400
	KeyShiftIns  KeyCode = 0x0500
	KeyCtrlDel   KeyCode = 0x0600
	KeyShiftDel  KeyCode = 0x0700
	KeyBack      KeyCode = 0x0E08
	KeyCtrlBack  KeyCode = 0x0E7F
	KeyShiftTab  KeyCode = 0x0F00
	KeyTab       KeyCode = 0x0F09
	KeyCtrlEnter KeyCode = 0x1C0A
	KeyEnter     KeyCode = 0x1C0D

	KeyAltQ KeyCode = 0x1000
	KeyAltW KeyCode = 0x1100
	KeyAltE KeyCode = 0x1200
	KeyAltR KeyCode = 0x1300
	KeyAltT KeyCode = 0x1400
	KeyAltY KeyCode = 0x1500
	KeyAltU KeyCode = 0x1600
	KeyAltI KeyCode = 0x1700
	KeyAltO KeyCode = 0x1800
	KeyAltP KeyCode = 0x1900
	KeyAltA KeyCode = 0x1E00
	KeyAltS KeyCode = 0x1F00
	KeyAltD KeyCode = 0x2000
	KeyAltF KeyCode = 0x2100
	KeyAltG KeyCode = 0x2200
	KeyAltH KeyCode = 0x2300
	KeyAltJ KeyCode = 0x2400
	KeyAltK KeyCode = 0x2500
	KeyAltL KeyCode = 0x2600
	KeyAltZ KeyCode = 0x2C00
	KeyAltX KeyCode = 0x2D00
	KeyAltC KeyCode = 0x2E00
	KeyAltV KeyCode = 0x2F00
	KeyAltB KeyCode = 0x3000
	KeyAltN KeyCode = 0x3100
	KeyAltM KeyCode = 0x3200

	KeyF1  KeyCode = 0x3B00
	KeyF2  KeyCode = 0x3C00
	KeyF3  KeyCode = 0x3D00
	KeyF4  KeyCode = 0x3E00
	KeyF5  KeyCode = 0x3F00
	KeyF6  KeyCode = 0x4000
	KeyF7  KeyCode = 0x4100
	KeyF8  KeyCode = 0x4200
	KeyF9  KeyCode = 0x4300
	KeyF10 KeyCode = 0x4400
	KeyF11 KeyCode = 0x8500
	KeyF12 KeyCode = 0x8600

	KeyHome      KeyCode = 0x4700
	KeyUp        KeyCode = 0x4800
	KeyPgUp      KeyCode = 0x4900
	KeyGrayMinus KeyCode = 0x4A2D
	KeyLeft      KeyCode = 0x4B00
	KeyRight     KeyCode = 0x4D00
	KeyGrayPlus  KeyCode = 0x4E2B
	KeyEnd       KeyCode = 0x4F00
	KeyDown      KeyCode = 0x5000
	KeyPgDn      KeyCode = 0x5100
	KeyIns       KeyCode = 0x5200
	KeyDel       KeyCode = 0x5300

	// KeyEscEsc is the double-ESC code emitted when two ESC presses
	// arrive within the disambiguation window. 0x1B is not a scan code
	// in the legacy page, so the value cannot collide with the table
	// above.
	KeyEscEsc KeyCode = 0x1B1B
)

type keyDB struct {
	s2k map[string]KeyCode
	k2s map[KeyCode]string
}

// gKeyDB maps between key names and key codes, for config files and
// debug output.
var gKeyDB = &keyDB{
	s2k: make(map[string]KeyCode),
	k2s: make(map[KeyCode]string),
}

func (db *keyDB) add(n string, k KeyCode) {
	// key->string can only have one mapping
	if _, ok := db.k2s[k]; !ok {
		db.k2s[k] = n
	}
	db.s2k[n] = k
}

// altLetters maps a letter to its Alt+letter scan code. Populated from
// the keyboard-row layout of the legacy table.
var altLetters = map[rune]KeyCode{}

func init() {
	rows := []struct {
		letters string
		base    KeyCode
	}{
		{"qwertyuiop", KeyAltQ},
		{"asdfghjkl", KeyAltA},
		{"zxcvbnm", KeyAltZ},
	}
	for _, row := range rows {
		for i, ch := range row.letters {
			k := row.base + KeyCode(i)<<8
			altLetters[ch] = k
			gKeyDB.add(fmt.Sprintf("M-%c", ch), k)
		}
	}

	for i := 0; i < 10; i++ {
		gKeyDB.add(fmt.Sprintf("F%d", i+1), KeyF1+KeyCode(i)<<8)
	}
	gKeyDB.add("F11", KeyF11)
	gKeyDB.add("F12", KeyF12)

	for ch := 'a'; ch <= 'z'; ch++ {
		gKeyDB.add(fmt.Sprintf("C-%c", ch), KeyCode(ch-'a'+1))
	}

	named := map[string]KeyCode{
		"Esc":        KeyEsc,
		"EscEsc":     KeyEscEsc,
		"Enter":      KeyEnter,
		"Tab":        KeyTab,
		"S-Tab":      KeyShiftTab,
		"BS":         KeyBack,
		"Insert":     KeyIns,
		"Delete":     KeyDel,
		"Home":       KeyHome,
		"End":        KeyEnd,
		"Pgup":       KeyPgUp,
		"Pgdn":       KeyPgDn,
		"ArrowUp":    KeyUp,
		"ArrowDown":  KeyDown,
		"ArrowLeft":  KeyLeft,
		"ArrowRight": KeyRight,
	}
	for n, k := range named {
		gKeyDB.add(n, k)
	}
}

// AltLetter returns the Alt+letter code for an ASCII letter, or false
// when the rune has no Alt mapping. Uppercase letters fold to the same
// code as lowercase.
func AltLetter(r rune) (KeyCode, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	k, ok := altLetters[r]
	return k, ok
}

// LookupKey resolves a key name (e.g. "F10", "C-x", "M-q") as used in
// config files.
func LookupKey(name string) (KeyCode, bool) {
	k, ok := gKeyDB.s2k[name]
	return k, ok
}

func (k KeyCode) String() string {
	if s, ok := gKeyDB.k2s[k]; ok {
		return s
	}
	if ch := k & 0xFF; k < 0x100 && ch >= 0x20 {
		return string(rune(ch))
	}
	return fmt.Sprintf("KeyCode(0x%04X)", uint16(k))
}
