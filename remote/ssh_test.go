package remote

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/tvision-go/tvision/backend"
)

// fakeChannel satisfies ssh.Channel with a pipe for client input and a
// buffer for session output.
type fakeChannel struct {
	r *io.PipeReader
	w bytes.Buffer
}

func newFakeChannel() (*fakeChannel, *io.PipeWriter) {
	pr, pw := io.Pipe()
	return &fakeChannel{r: pr}, pw
}

func (c *fakeChannel) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *fakeChannel) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *fakeChannel) Close() error                { return c.r.Close() }
func (c *fakeChannel) CloseWrite() error           { return nil }
func (c *fakeChannel) Stderr() io.ReadWriter       { return nil }

func (c *fakeChannel) SendRequest(name string, wantReply bool, payload []byte) (bool, error) {
	return false, nil
}

func TestSessionPtyRequest(t *testing.T) {
	ch, pw := newFakeChannel()
	defer pw.Close()
	s := NewSession(ch, nil)

	s.handleRequest(&ssh.Request{
		Type: "pty-req",
		Payload: ssh.Marshal(ptyRequest{
			Term: "xterm-256color",
			Cols: 120,
			Rows: 40,
		}),
	})

	w, h := s.size.Get()
	assert.Equal(t, 120, w)
	assert.Equal(t, 40, h)
	assert.Equal(t, "xterm-256color", s.Term())
}

func TestSessionWindowChange(t *testing.T) {
	ch, pw := newFakeChannel()
	defer pw.Close()
	s := NewSession(ch, nil)

	s.handleRequest(&ssh.Request{
		Type:    "window-change",
		Payload: ssh.Marshal(windowChange{Cols: 132, Rows: 43}),
	})

	w, h := s.backend.Size()
	assert.Equal(t, 132, w)
	assert.Equal(t, 43, h)
}

func TestSessionDefaultSize(t *testing.T) {
	ch, pw := newFakeChannel()
	defer pw.Close()
	s := NewSession(ch, nil)

	// Without a pty-req the session assumes the classic 80x24.
	w, h := s.backend.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)
}

func TestSessionMalformedPtyRequest(t *testing.T) {
	ch, pw := newFakeChannel()
	defer pw.Close()
	s := NewSession(ch, nil)

	s.handleRequest(&ssh.Request{Type: "pty-req", Payload: []byte{0x01}})

	w, h := s.size.Get()
	assert.Equal(t, 80, w, "a malformed request leaves the size untouched")
	assert.Equal(t, 24, h)
}

func TestSessionRun(t *testing.T) {
	ch, pw := newFakeChannel()
	reqs := make(chan *ssh.Request)
	s := NewSession(ch, reqs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Bytes written by the client surface as events on the backend.
	_, err := pw.Write([]byte("a"))
	require.NoError(t, err)

	b := s.Backend()
	ev, err := b.PollEvent(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 'a', ev.Key.Ch)

	// A client disconnect ends Run cleanly and the backend reports it.
	require.NoError(t, pw.Close())
	close(reqs)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the channel closed")
	}

	_, err = b.PollEvent(10 * time.Millisecond)
	require.ErrorIs(t, err, backend.ErrDisconnected)
}

func TestSessionBackendWritesToChannel(t *testing.T) {
	ch, pw := newFakeChannel()
	defer pw.Close()
	s := NewSession(ch, nil)

	b := s.Backend()
	require.NoError(t, b.WriteRaw([]byte("hello")))
	require.NoError(t, b.Flush())
	assert.Equal(t, "hello", ch.w.String())
}
