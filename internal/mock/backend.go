// Package mock provides scripted test doubles for the backend
// contract.
package mock

import (
	"time"

	"github.com/tvision-go/tvision/backend"
	"github.com/tvision-go/tvision/event"
)

// Backend is a scripted backend: tests queue events with PushEvent and
// every contract method is recorded. PollEvent never blocks; an empty
// queue reports a timeout.
type Backend struct {
	*Interceptor
	Width   int
	Height  int
	CapsVal backend.Capabilities
	PollErr error

	queue []event.Event
}

func NewBackend() *Backend {
	return &Backend{
		Interceptor: NewInterceptor(),
		Width:       80,
		Height:      24,
		CapsVal:     backend.Capabilities{Mouse: true, Color256: true},
	}
}

// PushEvent queues an event for a later PollEvent.
func (b *Backend) PushEvent(ev event.Event) {
	b.queue = append(b.queue, ev)
}

func (b *Backend) Init() error {
	b.Record("Init", nil)
	return nil
}

func (b *Backend) Close() error {
	b.Record("Close", nil)
	return nil
}

func (b *Backend) Suspend() error { return b.Close() }
func (b *Backend) Resume() error  { return b.Init() }

func (b *Backend) Size() (int, int) {
	return b.Width, b.Height
}

func (b *Backend) PollEvent(_ time.Duration) (event.Event, error) {
	b.Record("PollEvent", nil)
	if b.PollErr != nil {
		return event.Event{}, b.PollErr
	}
	if len(b.queue) == 0 {
		return event.Event{}, nil
	}
	ev := b.queue[0]
	b.queue = b.queue[1:]
	return ev, nil
}

func (b *Backend) WriteRaw(p []byte) error {
	b.Record("WriteRaw", []interface{}{append([]byte(nil), p...)})
	return nil
}

func (b *Backend) Flush() error {
	b.Record("Flush", nil)
	return nil
}

func (b *Backend) ShowCursor(x, y int) {
	b.Record("ShowCursor", []interface{}{x, y})
}

func (b *Backend) HideCursor() {
	b.Record("HideCursor", nil)
}

func (b *Backend) Caps() backend.Capabilities {
	return b.CapsVal
}

func (b *Backend) CellAspect() (int, int) {
	return 2, 1
}

func (b *Backend) Bell() {
	b.Record("Bell", nil)
}

func (b *Backend) Clear() {
	b.Record("Clear", nil)
}
