package backend

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"

	"github.com/tvision-go/tvision/ansi"
	"github.com/tvision-go/tvision/event"
	"github.com/tvision-go/tvision/geom"
)

// Local drives the OS terminal directly through tcell: raw mode,
// alternate screen, mouse capture and the native event stream. Key and
// mouse events are translated into the legacy key-code table before
// they reach the router.
type Local struct {
	mutex  sync.Mutex
	screen tcell.Screen
	evCh   chan tcell.Event
	doneCh chan struct{}

	esc     ansi.EscState
	clicks  event.ClickDetector
	caps    Capabilities
	queue   []event.Event
	buttons uint8
	now     func() time.Time

	// DumpScreen and DumpView are global debug hotkey callbacks. When
	// the matching key is seen it is intercepted before it becomes an
	// event and the callback runs instead.
	DumpScreenKey event.KeyCode
	DumpViewKey   event.KeyCode
	OnDumpScreen  func()
	OnDumpView    func()

	errWriter io.Writer

	// newScreen is swappable so tests can substitute a simulation
	// screen.
	newScreen func() (tcell.Screen, error)
}

// LocalOption adjusts a Local backend at construction time.
type LocalOption func(*Local)

// WithEscWindow sets the ESC disambiguation window.
func WithEscWindow(d time.Duration) LocalOption {
	return func(l *Local) { l.esc.Window = d }
}

// WithLocalClickWindow sets the double-click detection window.
func WithLocalClickWindow(d time.Duration) LocalOption {
	return func(l *Local) { l.clicks.Window = d }
}

// NewLocal constructs the local-terminal backend. The terminal is not
// touched until Init.
func NewLocal(opts ...LocalOption) *Local {
	l := &Local{
		errWriter: os.Stderr,
		now:       time.Now,
		newScreen: func() (tcell.Screen, error) { return tcell.NewScreen() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) Init() error {
	screen, err := l.newScreen()
	if err != nil {
		return errors.Wrap(err, "failed to create terminal screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize terminal")
	}
	screen.EnableMouse()

	l.mutex.Lock()
	l.screen = screen
	l.doneCh = make(chan struct{})
	l.evCh = make(chan tcell.Event, 8)
	l.caps = Capabilities{
		Mouse:     true,
		Color256:  screen.Colors() >= 256,
		TrueColor: screen.Colors() >= 1<<24,
	}
	l.mutex.Unlock()

	go l.pollLoop(screen)
	return nil
}

// pollLoop pumps tcell's blocking PollEvent into a channel so the
// consumer loop can wait with a timeout. Panics are logged rather than
// silently swallowed.
func (l *Local) pollLoop(screen tcell.Screen) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(l.errWriter, "tvision: panic in PollEvent goroutine: %v\n%s", r, debug.Stack())
		}
		close(l.evCh)
	}()

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case l.evCh <- ev:
		case <-l.doneCh:
			return
		}
	}
}

func (l *Local) Close() error {
	l.mutex.Lock()
	screen := l.screen
	l.screen = nil
	if l.doneCh != nil {
		close(l.doneCh)
		l.doneCh = nil
	}
	l.mutex.Unlock()

	if screen != nil {
		screen.Fini()
	}
	return nil
}

func (l *Local) Suspend() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.screen == nil {
		return errors.New("backend not initialized")
	}
	return errors.Wrap(l.screen.Suspend(), "failed to suspend terminal")
}

func (l *Local) Resume() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.screen == nil {
		return errors.New("backend not initialized")
	}
	return errors.Wrap(l.screen.Resume(), "failed to resume terminal")
}

func (l *Local) Size() (int, int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.screen == nil {
		return 0, 0
	}
	return l.screen.Size()
}

// PollEvent waits up to timeout for the next translated event. Resize
// notifications are absorbed here (the router re-queries Size every
// frame) and the poll keeps waiting out the remaining timeout.
func (l *Local) PollEvent(timeout time.Duration) (event.Event, error) {
	deadline := l.now().Add(timeout)
	for {
		if len(l.queue) > 0 {
			ev := l.queue[0]
			l.queue = l.queue[1:]
			return ev, nil
		}

		remain := deadline.Sub(l.now())
		if remain <= 0 {
			// Timeout: a held ESC whose window lapsed is delivered
			// as a plain key.
			if held, ok := l.esc.Expire(l.now()); ok {
				return held, nil
			}
			return event.Event{}, nil
		}

		t := time.NewTimer(remain)
		select {
		case raw, ok := <-l.evCh:
			t.Stop()
			if !ok {
				return event.Event{}, ErrDisconnected
			}
			l.translate(raw)
		case <-t.C:
		}
	}
}

// translate converts one native tcell event into zero or more queued
// events.
func (l *Local) translate(raw tcell.Event) {
	switch tev := raw.(type) {
	case *tcell.EventKey:
		ev, ok := translateKey(tev)
		if !ok {
			return
		}
		if l.intercept(ev) {
			return
		}
		l.queue = append(l.queue, l.esc.Track(ev, l.now())...)
	case *tcell.EventMouse:
		l.translateMouse(tev)
	case *tcell.EventResize:
		// size is re-queried from the screen; nothing to forward
		if pdebug.Enabled {
			w, h := tev.Size()
			pdebug.Printf("backend.Local: resize to %dx%d", w, h)
		}
	}
}

// intercept handles the global dump hotkeys: they never become events.
func (l *Local) intercept(ev event.Event) bool {
	if ev.What != event.Keyboard || ev.Key.Code == event.KeyNone {
		return false
	}
	switch ev.Key.Code {
	case l.DumpScreenKey:
		if l.OnDumpScreen != nil {
			l.OnDumpScreen()
			return true
		}
	case l.DumpViewKey:
		if l.OnDumpView != nil {
			l.OnDumpView()
			return true
		}
	}
	return false
}

func (l *Local) translateMouse(tev *tcell.EventMouse) {
	x, y := tev.Position()
	pos := geom.Pt(x, y)

	mask := tev.Buttons()
	if mask&tcell.WheelUp != 0 {
		l.queue = append(l.queue, event.NewMouse(event.MouseWheelUp, pos, 0))
	}
	if mask&tcell.WheelDown != 0 {
		l.queue = append(l.queue, event.NewMouse(event.MouseWheelDown, pos, 0))
	}

	buttons := translateButtons(mask)
	pressed := buttons &^ l.buttons
	released := l.buttons &^ buttons
	l.buttons = buttons

	switch {
	case pressed != 0:
		ev := event.NewMouse(event.MouseDown, pos, pressed)
		ev.Mouse.DoubleClick = l.clicks.IsDouble(pos, l.now())
		l.queue = append(l.queue, ev)
	case released != 0:
		l.queue = append(l.queue, event.NewMouse(event.MouseUp, pos, released))
	case buttons != 0 || mask == tcell.ButtonNone:
		// Drag with a held button, or plain motion. Duplicate
		// press/release reports collapse here: no transition, no
		// down/up event.
		if mask&(tcell.WheelUp|tcell.WheelDown) == 0 {
			l.queue = append(l.queue, event.NewMouse(event.MouseMove, pos, buttons))
		}
	}
}

func translateButtons(mask tcell.ButtonMask) uint8 {
	var buttons uint8
	if mask&tcell.ButtonPrimary != 0 {
		buttons |= event.ButtonLeft
	}
	if mask&tcell.ButtonMiddle != 0 {
		buttons |= event.ButtonMiddle
	}
	if mask&tcell.ButtonSecondary != 0 {
		buttons |= event.ButtonRight
	}
	return buttons
}

// tcellSpecial maps tcell's named keys onto the legacy scan-code
// table.
var tcellSpecial = map[tcell.Key]event.KeyCode{
	tcell.KeyUp:         event.KeyUp,
	tcell.KeyDown:       event.KeyDown,
	tcell.KeyLeft:       event.KeyLeft,
	tcell.KeyRight:      event.KeyRight,
	tcell.KeyHome:       event.KeyHome,
	tcell.KeyEnd:        event.KeyEnd,
	tcell.KeyPgUp:       event.KeyPgUp,
	tcell.KeyPgDn:       event.KeyPgDn,
	tcell.KeyInsert:     event.KeyIns,
	tcell.KeyDelete:     event.KeyDel,
	tcell.KeyEnter:      event.KeyEnter,
	tcell.KeyTab:        event.KeyTab,
	tcell.KeyBacktab:    event.KeyShiftTab,
	tcell.KeyBackspace:  event.KeyBack,
	tcell.KeyBackspace2: event.KeyBack,
	tcell.KeyEscape:     event.KeyEsc,
	tcell.KeyF1:         event.KeyF1,
	tcell.KeyF2:         event.KeyF2,
	tcell.KeyF3:         event.KeyF3,
	tcell.KeyF4:         event.KeyF4,
	tcell.KeyF5:         event.KeyF5,
	tcell.KeyF6:         event.KeyF6,
	tcell.KeyF7:         event.KeyF7,
	tcell.KeyF8:         event.KeyF8,
	tcell.KeyF9:         event.KeyF9,
	tcell.KeyF10:        event.KeyF10,
	tcell.KeyF11:        event.KeyF11,
	tcell.KeyF12:        event.KeyF12,
}

func translateMod(m tcell.ModMask) event.Modifier {
	var mod event.Modifier
	if m&tcell.ModShift != 0 {
		mod |= event.ModShift
	}
	if m&(tcell.ModAlt|tcell.ModMeta) != 0 {
		mod |= event.ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		mod |= event.ModCtrl
	}
	return mod
}

// translateKey converts a native key event via the fixed table. The
// bool result is false for keys with no legacy representation.
func translateKey(tev *tcell.EventKey) (event.Event, bool) {
	mod := translateMod(tev.Modifiers())

	if code, ok := tcellSpecial[tev.Key()]; ok {
		return event.NewKey(code, mod), true
	}

	if k := tev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return event.NewKey(event.KeyCode(k), mod|event.ModCtrl), true
	}

	if tev.Key() == tcell.KeyRune {
		ch := tev.Rune()
		if mod&event.ModAlt != 0 {
			if code, ok := event.AltLetter(ch); ok {
				return event.NewKey(code, event.ModAlt), true
			}
		}
		ev := event.NewRune(ch, mod)
		return ev, true
	}

	return event.Event{}, false
}

func (l *Local) WriteRaw(p []byte) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.screen == nil {
		return errors.New("backend not initialized")
	}
	tty, ok := l.screen.Tty()
	if !ok {
		return errors.New("terminal does not expose a tty")
	}
	_, err := tty.Write(p)
	return errors.Wrap(err, "failed to write to terminal")
}

func (l *Local) Flush() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.screen != nil {
		l.screen.Show()
	}
	return nil
}

func (l *Local) ShowCursor(x, y int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.screen != nil {
		l.screen.ShowCursor(x, y)
	}
}

func (l *Local) HideCursor() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.screen != nil {
		l.screen.HideCursor()
	}
}

func (l *Local) Caps() Capabilities {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.caps
}

func (l *Local) CellAspect() (int, int) {
	return 2, 1
}

func (l *Local) Bell() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.screen != nil {
		l.screen.Beep()
	}
}

func (l *Local) Clear() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.screen != nil {
		l.screen.Clear()
	}
}
