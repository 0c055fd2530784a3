package tvision

import (
	"context"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"

	"github.com/tvision-go/tvision/backend"
	"github.com/tvision-go/tvision/command"
	"github.com/tvision-go/tvision/config"
	"github.com/tvision-go/tvision/event"
	"github.com/tvision-go/tvision/geom"
	"github.com/tvision-go/tvision/view"
)

// Idler is implemented by overlay views that need a tick every frame
// (animations, clocks). Idle runs even while a modal loop is active.
type Idler interface {
	Idle()
}

// CursorOwner is implemented by views that place the hardware cursor.
type CursorOwner interface {
	Cursor() (geom.Point, bool)
}

// DefaultCommander is implemented by modal views with a default
// button; Enter activates it when its command is enabled.
type DefaultCommander interface {
	DefaultCommand() uint16
}

// Terminal is one interactive session: it owns exactly one backend,
// the command registry, and the top-level views, and runs the
// render/poll/route loop. Everything happens on the caller's
// goroutine; nested modal loops are plain recursive calls.
type Terminal struct {
	backend    backend.Backend
	config     *config.Config
	commands   *command.Set
	desktop    *view.Group
	menuBar    view.View
	statusLine view.View
	overlays   []view.View
	surface    *view.Surface
	quitKeys   map[event.KeyCode]struct{}
	running    bool
}

// New creates a session around a backend. A nil cfg selects defaults.
// The command registry starts with everything enabled except the
// window commands, which require a window to act on.
func New(b backend.Backend, cfg *config.Config) *Terminal {
	if cfg == nil {
		cfg = config.New()
	}

	quit := map[event.KeyCode]struct{}{}
	if len(cfg.QuitKeys) > 0 {
		for _, name := range cfg.QuitKeys {
			if k, ok := event.LookupKey(name); ok {
				quit[k] = struct{}{}
			}
		}
	} else {
		for _, k := range []event.KeyCode{event.KeyCtrlC, event.KeyF10, event.KeyAltX} {
			quit[k] = struct{}{}
		}
	}

	return &Terminal{
		backend:  b,
		config:   cfg,
		commands: command.NewSet(windowCommands...),
		desktop:  view.NewGroup(geom.NewRect(0, 0, 0, 0)),
		quitKeys: quit,
	}
}

// Commands exposes the session's command registry. Views hold this
// handle to enable and disable their commands.
func (t *Terminal) Commands() *command.Set {
	return t.commands
}

// Desktop is the view tree root below the menu bar.
func (t *Terminal) Desktop() *view.Group {
	return t.desktop
}

// Backend returns the transport driving this session.
func (t *Terminal) Backend() backend.Backend {
	return t.backend
}

func (t *Terminal) SetMenuBar(v view.View)    { t.menuBar = v }
func (t *Terminal) SetStatusLine(v view.View) { t.statusLine = v }

// AddOverlay registers a view that is drawn and idled every frame on
// top of everything, including while a modal loop runs.
func (t *Terminal) AddOverlay(v view.View) {
	t.overlays = append(t.overlays, v)
}

func (t *Terminal) RemoveOverlay(v view.View) {
	for i, o := range t.overlays {
		if o == v {
			t.overlays = append(t.overlays[:i], t.overlays[i+1:]...)
			return
		}
	}
}

// Quit stops the main loop after the current frame.
func (t *Terminal) Quit() {
	t.running = false
}

// Run initializes the backend and drives the session until a quit
// command, a disconnect, or ctx cancellation. A failed backend Init is
// fatal; per-frame flush failures are logged and the loop continues.
func (t *Terminal) Run(ctx context.Context) error {
	if err := t.backend.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize backend")
	}
	defer t.backend.Close()

	t.running = true
	for t.running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := t.frame(); err != nil {
			return err
		}
	}
	return nil
}

// frame runs one draw/poll/route iteration. The idle pass only runs on
// ticks where no real event was delivered.
func (t *Terminal) frame() error {
	t.draw()

	ev, err := t.backend.PollEvent(t.config.PollIntervalDuration())
	if err != nil {
		return errors.Wrap(err, "event poll failed")
	}

	if ev.What == event.Nothing {
		t.idle()
		return nil
	}

	t.dispatch(&ev)
	return nil
}

// dispatch routes one event through the stages in protocol order: menu
// bar, then the view tree, then the status line, then the
// application-level fallbacks. Each stage may consume the event and
// stop propagation.
func (t *Terminal) dispatch(ev *event.Event) {
	if pdebug.Enabled {
		g := pdebug.Marker("Terminal.dispatch %v", ev.What)
		defer g.End()
	}

	for _, stage := range []view.View{t.menuBar, t.desktop, t.statusLine} {
		if stage == nil {
			continue
		}
		t.route(stage, ev)
		if ev.Consumed() {
			return
		}
	}

	switch {
	case ev.What == event.Keyboard:
		if _, ok := t.quitKeys[ev.Key.Code]; ok {
			t.running = false
			ev.Clear()
		}
	case ev.What == event.Command && ev.Cmd == CmQuit:
		t.running = false
		ev.Clear()
	}
}

// route hands one event to a top-level view. Mouse events are
// positional: a stage only sees clicks inside its bounds, with the
// position shifted into the stage's own coordinate space so that
// nested hit tests line up with how Draw translates through Sub.
func (t *Terminal) route(v view.View, ev *event.Event) {
	if !ev.IsMouse() {
		v.HandleEvent(ev)
		return
	}

	orig := ev.Mouse.Pos
	if !v.Bounds().Contains(orig) {
		return
	}
	ev.Mouse.Pos = orig.Sub(v.Bounds().A)
	v.HandleEvent(ev)
	if !ev.Consumed() {
		ev.Mouse.Pos = orig
	}
}

// idle delivers the command-set-changed broadcast when the registry
// has pending transitions. The broadcast must reach every top-level
// view, disabled controls included, so they can re-enable themselves;
// only then is the flag cleared.
func (t *Terminal) idle() {
	if !t.commands.Changed() {
		return
	}

	b := event.NewBroadcast(CmCommandSetChanged)
	for _, top := range t.topViews() {
		top.HandleEvent(&b)
	}
	t.commands.ClearChanged()
}

func (t *Terminal) topViews() []view.View {
	tops := make([]view.View, 0, 3+len(t.overlays))
	for _, v := range []view.View{t.menuBar, t.desktop, t.statusLine} {
		if v != nil {
			tops = append(tops, v)
		}
	}
	return append(tops, t.overlays...)
}

// draw renders the full stack: desktop, then menu bar, then status
// line, then overlays, then cursor placement. Flush failures are
// non-fatal per frame.
func (t *Terminal) draw() {
	w, h := t.backend.Size()
	if w <= 0 || h <= 0 {
		return
	}

	if t.surface == nil || !sameSize(t.surface, w, h) {
		t.surface = view.NewSurface(w, h)
	}

	desktopTop := 0
	desktopBottom := h
	if t.menuBar != nil {
		t.menuBar.SetBounds(geom.NewRect(0, 0, w, 1))
		desktopTop = 1
	}
	if t.statusLine != nil {
		t.statusLine.SetBounds(geom.NewRect(0, h-1, w, h))
		desktopBottom = h - 1
	}
	t.desktop.SetBounds(geom.NewRect(0, desktopTop, w, desktopBottom))

	t.surface.Fill(geom.NewRect(0, 0, w, h), ' ', 0x07)
	t.desktop.Draw(t.surface.Sub(t.desktop.Bounds()))
	if t.menuBar != nil {
		t.menuBar.Draw(t.surface.Sub(t.menuBar.Bounds()))
	}
	if t.statusLine != nil {
		t.statusLine.Draw(t.surface.Sub(t.statusLine.Bounds()))
	}
	for _, o := range t.overlays {
		if idler, ok := o.(Idler); ok {
			idler.Idle()
		}
		if o.State()&view.StateVisible != 0 {
			o.Draw(t.surface.Sub(o.Bounds()))
		}
	}

	if err := t.surface.FlushTo(t.backend); err != nil {
		tracer.Printf("draw: %s", err)
		return
	}

	t.placeCursor()

	if err := t.backend.Flush(); err != nil {
		tracer.Printf("flush: %s", err)
	}
}

func (t *Terminal) placeCursor() {
	if f := t.desktop.Focused(); f != nil {
		if co, ok := f.(CursorOwner); ok {
			if pos, visible := co.Cursor(); visible {
				origin := f.Bounds().A.Add(t.desktop.Bounds().A)
				t.backend.ShowCursor(origin.X+pos.X, origin.Y+pos.Y)
				return
			}
		}
	}
	t.backend.HideCursor()
}

func sameSize(s *view.Surface, w, h int) bool {
	sw, sh := s.Size()
	return sw == w && sh == h
}

// ExecView runs a nested modal loop scoped to v. The loop ends when a
// handler converts an event into a terminal command (id below
// MaxTerminalCommand) and that id is returned to the caller; larger
// ids are internal dialog signals and keep the loop running. Double
// ESC always cancels. Overlays keep drawing and idling throughout.
func (t *Terminal) ExecView(ctx context.Context, v view.View) (uint16, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("Terminal.ExecView")
		defer g.End()
	}

	v.SetState(view.StateModal, true)
	t.desktop.Insert(v)
	defer func() {
		t.desktop.Remove(v)
		v.SetState(view.StateModal, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return CmCancel, ctx.Err()
		default:
		}

		t.draw()

		ev, err := t.backend.PollEvent(t.config.PollIntervalDuration())
		if err != nil {
			return CmCancel, errors.Wrap(err, "event poll failed")
		}

		if ev.What == event.Nothing {
			t.idle()
			continue
		}

		if ev.What == event.Keyboard && ev.Key.Code == event.KeyEscEsc {
			return CmCancel, nil
		}

		if ev.IsMouse() {
			// The modal view sits on top of the desktop, so the
			// desktop's positional routing reaches it with translated
			// coordinates.
			t.route(t.desktop, &ev)
		} else {
			v.HandleEvent(&ev)
		}

		if ev.What == event.Command && ev.Cmd < MaxTerminalCommand {
			return ev.Cmd, nil
		}

		if ev.What == event.Keyboard && ev.Key.Code == event.KeyEnter {
			if dc, ok := v.(DefaultCommander); ok {
				if cmd := dc.DefaultCommand(); t.commands.Enabled(cmd) && cmd < MaxTerminalCommand {
					return cmd, nil
				}
			}
		}
	}
}
