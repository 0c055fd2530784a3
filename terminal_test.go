package tvision

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvision-go/tvision/config"
	"github.com/tvision-go/tvision/event"
	"github.com/tvision-go/tvision/geom"
	"github.com/tvision-go/tvision/internal/mock"
	"github.com/tvision-go/tvision/view"
)

// recorder is a test view that logs every event it sees and optionally
// consumes them.
type recorder struct {
	view.Base
	seen    []event.Event
	consume bool
	focus   bool
}

func newRecorder(r geom.Rect) *recorder {
	return &recorder{Base: view.NewBase(r)}
}

func (r *recorder) HandleEvent(ev *event.Event) {
	r.seen = append(r.seen, *ev)
	if r.consume {
		ev.Clear()
	}
}

func (r *recorder) CanFocus() bool {
	return r.focus
}

func TestRunQuitKeys(t *testing.T) {
	for _, code := range []event.KeyCode{event.KeyCtrlC, event.KeyF10, event.KeyAltX} {
		b := mock.NewBackend()
		b.PushEvent(event.NewKey(code, event.ModNone))

		term := New(b, nil)
		require.NoError(t, term.Run(context.Background()), "key %s", code)
		assert.Equal(t, 1, b.Calls("Init"), "key %s", code)
		assert.Equal(t, 1, b.Calls("Close"), "key %s", code)
	}
}

func TestRunCmQuit(t *testing.T) {
	b := mock.NewBackend()
	b.PushEvent(event.NewCommand(CmQuit))

	term := New(b, nil)
	require.NoError(t, term.Run(context.Background()))
}

func TestRunConfiguredQuitKeys(t *testing.T) {
	cfg := config.New()
	cfg.QuitKeys = []string{"C-q"}

	b := mock.NewBackend()
	b.PushEvent(event.NewKey(event.KeyCtrlQ, event.ModNone))

	term := New(b, cfg)
	require.NoError(t, term.Run(context.Background()))
}

func TestRunPollError(t *testing.T) {
	b := mock.NewBackend()
	b.PollErr = errors.New("transport gone")

	term := New(b, nil)
	err := term.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event poll failed")
	assert.Equal(t, 1, b.Calls("Close"), "the backend is torn down on a poll failure")
}

func TestRunContextCanceled(t *testing.T) {
	b := mock.NewBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	term := New(b, nil)
	require.ErrorIs(t, term.Run(ctx), context.Canceled)
	assert.Equal(t, 1, b.Calls("Close"))
}

func TestDispatchStageOrder(t *testing.T) {
	term := New(mock.NewBackend(), nil)
	menu := newRecorder(geom.NewRect(0, 0, 80, 1))
	status := newRecorder(geom.NewRect(0, 23, 80, 24))
	desk := newRecorder(geom.NewRect(0, 0, 80, 22))
	desk.focus = true
	term.SetMenuBar(menu)
	term.SetStatusLine(status)
	term.Desktop().Insert(desk)

	ev := event.NewKey(event.KeyF1, event.ModNone)
	term.dispatch(&ev)
	assert.Len(t, menu.seen, 1)
	assert.Len(t, desk.seen, 1)
	assert.Len(t, status.seen, 1)
}

func TestDispatchShortCircuit(t *testing.T) {
	term := New(mock.NewBackend(), nil)
	menu := newRecorder(geom.NewRect(0, 0, 80, 1))
	menu.consume = true
	desk := newRecorder(geom.NewRect(0, 0, 80, 22))
	desk.focus = true
	term.SetMenuBar(menu)
	term.Desktop().Insert(desk)

	ev := event.NewKey(event.KeyF1, event.ModNone)
	term.dispatch(&ev)
	assert.Len(t, menu.seen, 1)
	assert.Empty(t, desk.seen, "a consumed event stops at the consuming stage")
	assert.True(t, ev.Consumed())
}

func TestDispatchQuitFallback(t *testing.T) {
	// A quit key that no view consumes stops the loop at the
	// application fallback stage.
	term := New(mock.NewBackend(), nil)
	term.running = true

	ev := event.NewKey(event.KeyAltX, event.ModNone)
	term.dispatch(&ev)
	assert.False(t, term.running)
	assert.True(t, ev.Consumed())
}

func TestDispatchConsumedQuitKeyDoesNotQuit(t *testing.T) {
	term := New(mock.NewBackend(), nil)
	term.running = true
	desk := newRecorder(geom.NewRect(0, 0, 80, 22))
	desk.focus = true
	desk.consume = true
	term.Desktop().Insert(desk)

	ev := event.NewKey(event.KeyAltX, event.ModNone)
	term.dispatch(&ev)
	assert.True(t, term.running, "a view that eats the quit key keeps the loop alive")
}

func TestDispatchMouseBelowMenuBar(t *testing.T) {
	// The desktop starts below the menu bar, so a click on a desktop
	// child's drawn position must reach that child, not the menu bar,
	// and arrive in the child's own coordinate space.
	b := mock.NewBackend()
	term := New(b, nil)
	menu := newRecorder(geom.NewRect(0, 0, 80, 1))
	term.SetMenuBar(menu)
	child := newRecorder(geom.NewRect(5, 0, 15, 1))
	term.Desktop().Insert(child)

	term.draw()

	ev := event.NewMouse(event.MouseDown, geom.Pt(5, 1), event.ButtonLeft)
	term.dispatch(&ev)
	require.Len(t, child.seen, 1, "click at the child's drawn position must reach it")
	assert.Equal(t, geom.Pt(0, 0), child.seen[0].Mouse.Pos)
	assert.Empty(t, menu.seen, "the click was below the menu bar row")
}

func TestDispatchMouseOnMenuBarRow(t *testing.T) {
	b := mock.NewBackend()
	term := New(b, nil)
	menu := newRecorder(geom.NewRect(0, 0, 80, 1))
	term.SetMenuBar(menu)
	child := newRecorder(geom.NewRect(0, 0, 80, 22))
	term.Desktop().Insert(child)

	term.draw()

	ev := event.NewMouse(event.MouseDown, geom.Pt(3, 0), event.ButtonLeft)
	term.dispatch(&ev)
	require.Len(t, menu.seen, 1)
	assert.Equal(t, geom.Pt(3, 0), menu.seen[0].Mouse.Pos)
	assert.Empty(t, child.seen, "the menu bar owns its row")
}

func TestIdleBroadcastsCommandSetChange(t *testing.T) {
	term := New(mock.NewBackend(), nil)
	menu := newRecorder(geom.NewRect(0, 0, 80, 1))
	desk := newRecorder(geom.NewRect(0, 0, 80, 22))
	term.SetMenuBar(menu)
	term.Desktop().Insert(desk)
	desk.SetState(view.StateDisabled, true)

	term.Commands().Disable(CmOK)
	require.True(t, term.Commands().Changed())

	term.idle()

	require.Len(t, menu.seen, 1)
	assert.Equal(t, event.Broadcast, menu.seen[0].What)
	assert.Equal(t, CmCommandSetChanged, menu.seen[0].Cmd)
	require.Len(t, desk.seen, 1, "disabled views still receive the broadcast")
	assert.False(t, term.Commands().Changed(), "the flag clears after everyone was told")
}

func TestIdleWithoutChangesIsQuiet(t *testing.T) {
	term := New(mock.NewBackend(), nil)
	desk := newRecorder(geom.NewRect(0, 0, 80, 22))
	term.Desktop().Insert(desk)

	term.idle()
	assert.Empty(t, desk.seen)
}

func TestWindowCommandsStartDisabled(t *testing.T) {
	term := New(mock.NewBackend(), nil)
	for _, id := range windowCommands {
		assert.False(t, term.Commands().Enabled(id), "command %d needs a window first", id)
	}
	assert.True(t, term.Commands().Enabled(CmQuit))
	assert.True(t, term.Commands().Enabled(CmOK))
}

func TestDrawWritesFullFrame(t *testing.T) {
	b := mock.NewBackend()
	term := New(b, nil)

	term.draw()
	assert.Equal(t, b.Height, b.Calls("WriteRaw"), "one raw write per screen row")
	assert.Equal(t, 1, b.Calls("Flush"))
	assert.Equal(t, 1, b.Calls("HideCursor"), "no focused cursor owner hides the cursor")
}

// cursorView is a focusable view that places the hardware cursor.
type cursorView struct {
	view.Base
	pos geom.Point
}

func (c *cursorView) CanFocus() bool { return true }

func (c *cursorView) Cursor() (geom.Point, bool) {
	return c.pos, true
}

func TestDrawPlacesCursor(t *testing.T) {
	b := mock.NewBackend()
	term := New(b, nil)
	term.SetMenuBar(newRecorder(geom.NewRect(0, 0, 80, 1)))

	cv := &cursorView{Base: view.NewBase(geom.NewRect(2, 1, 12, 2)), pos: geom.Pt(3, 0)}
	term.Desktop().Insert(cv)

	term.draw()

	require.Equal(t, 1, b.Calls("ShowCursor"))
	// Cursor position is view-relative; the desktop starts below the
	// menu bar, so the absolute row is shifted down by one.
	args := b.Events["ShowCursor"][0].([]interface{})
	assert.Equal(t, 5, args[0])
	assert.Equal(t, 2, args[1])
}

// modalView converts the keys it receives through a transform, the way
// a dialog turns button activity into commands.
type modalView struct {
	view.Base
	transform func(*event.Event)
}

func (m *modalView) HandleEvent(ev *event.Event) {
	if m.transform != nil {
		m.transform(ev)
	}
}

func TestExecViewTerminalCommand(t *testing.T) {
	b := mock.NewBackend()
	b.PushEvent(event.NewKey(event.KeyF1, event.ModNone))

	term := New(b, nil)
	m := &modalView{Base: view.NewBase(geom.NewRect(10, 5, 40, 15))}
	m.transform = func(ev *event.Event) {
		if ev.What == event.Keyboard {
			*ev = event.NewCommand(CmOK)
		}
	}

	cmd, err := term.ExecView(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, CmOK, cmd)
	assert.Empty(t, term.Desktop().Children(), "the modal view is removed on exit")
	assert.Zero(t, m.State()&view.StateModal)
}

func TestExecViewInternalCommandContinues(t *testing.T) {
	b := mock.NewBackend()
	b.PushEvent(event.NewKey(event.KeyF1, event.ModNone))
	b.PushEvent(event.NewKey(event.KeyF2, event.ModNone))

	term := New(b, nil)
	m := &modalView{Base: view.NewBase(geom.NewRect(10, 5, 40, 15))}
	m.transform = func(ev *event.Event) {
		if ev.What != event.Keyboard {
			return
		}
		switch ev.Key.Code {
		case event.KeyF1:
			// Internal dialog signal; must not end the loop.
			*ev = event.NewCommand(2000)
		case event.KeyF2:
			*ev = event.NewCommand(CmCancel)
		}
	}

	cmd, err := term.ExecView(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, CmCancel, cmd)
}

func TestExecViewDoubleEscCancels(t *testing.T) {
	b := mock.NewBackend()
	b.PushEvent(event.NewKey(event.KeyEscEsc, event.ModNone))

	term := New(b, nil)
	m := &modalView{Base: view.NewBase(geom.NewRect(10, 5, 40, 15))}

	cmd, err := term.ExecView(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, CmCancel, cmd)
}

// defaultModal carries a default button command for Enter.
type defaultModal struct {
	modalView
	def uint16
}

func (m *defaultModal) DefaultCommand() uint16 {
	return m.def
}

func TestExecViewEnterRunsDefaultCommand(t *testing.T) {
	b := mock.NewBackend()
	b.PushEvent(event.NewKey(event.KeyEnter, event.ModNone))

	term := New(b, nil)
	m := &defaultModal{def: CmOK}
	m.Base = view.NewBase(geom.NewRect(10, 5, 40, 15))

	cmd, err := term.ExecView(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, CmOK, cmd)
}

func TestExecViewEnterIgnoresDisabledDefault(t *testing.T) {
	b := mock.NewBackend()
	b.PushEvent(event.NewKey(event.KeyEnter, event.ModNone))
	b.PushEvent(event.NewKey(event.KeyEscEsc, event.ModNone))

	term := New(b, nil)
	term.Commands().Disable(CmOK)
	m := &defaultModal{def: CmOK}
	m.Base = view.NewBase(geom.NewRect(10, 5, 40, 15))

	cmd, err := term.ExecView(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, CmCancel, cmd, "Enter on a disabled default falls through")
}

func TestExecViewContextCanceled(t *testing.T) {
	b := mock.NewBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	term := New(b, nil)
	m := &modalView{Base: view.NewBase(geom.NewRect(10, 5, 40, 15))}

	cmd, err := term.ExecView(ctx, m)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, CmCancel, cmd)
}

// tickOverlay counts idle ticks.
type tickOverlay struct {
	view.Base
	ticks int
}

func (o *tickOverlay) Idle() {
	o.ticks++
}

func TestExecViewOverlayKeepsIdling(t *testing.T) {
	b := mock.NewBackend()
	b.PushEvent(event.NewKey(event.KeyEscEsc, event.ModNone))

	term := New(b, nil)
	o := &tickOverlay{Base: view.NewBase(geom.NewRect(70, 0, 80, 1))}
	term.AddOverlay(o)

	_, err := term.ExecView(context.Background(), &modalView{Base: view.NewBase(geom.NewRect(10, 5, 40, 15))})
	require.NoError(t, err)
	assert.Greater(t, o.ticks, 0, "overlays tick inside the modal loop")
}

func TestRemoveOverlay(t *testing.T) {
	b := mock.NewBackend()
	term := New(b, nil)
	o := &tickOverlay{Base: view.NewBase(geom.NewRect(70, 0, 80, 1))}
	term.AddOverlay(o)
	term.RemoveOverlay(o)

	term.draw()
	assert.Zero(t, o.ticks)
}
