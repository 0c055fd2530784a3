package remote

import (
	"context"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/tvision-go/tvision/backend"
)

// ptyRequest is the payload of an SSH "pty-req" channel request.
type ptyRequest struct {
	Term     string
	Cols     uint32
	Rows     uint32
	WidthPx  uint32
	HeightPx uint32
	Modes    string
}

// windowChange is the payload of an SSH "window-change" request.
type windowChange struct {
	Cols     uint32
	Rows     uint32
	WidthPx  uint32
	HeightPx uint32
}

// Session adapts one accepted SSH session channel into a channel
// backend: channel bytes feed the decoder, pty-req and window-change
// requests feed the shared size cell, and backend output writes back
// into the channel.
type Session struct {
	ch      ssh.Channel
	reqs    <-chan *ssh.Request
	size    *backend.SizeCell
	pump    *Pump
	backend *backend.Channel
	term    string
}

// NewSession wraps an SSH channel and its request stream. The caller
// typically obtains both from ssh.NewChannel.Accept for a "session"
// channel.
func NewSession(ch ssh.Channel, reqs <-chan *ssh.Request, opts ...backend.ChannelOption) *Session {
	s := &Session{
		ch:   ch,
		reqs: reqs,
		size: backend.NewSizeCell(80, 24),
		pump: NewPump(0),
	}
	s.backend = backend.NewChannel(ch, s.pump.Events(), s.size, opts...)
	return s
}

// Backend returns the channel backend driving this session. It is
// valid immediately; events start flowing once Run is called.
func (s *Session) Backend() backend.Backend {
	return s.backend
}

// Term returns the terminal type announced by the client's pty-req, if
// one has been seen.
func (s *Session) Term() string {
	return s.term
}

// Run services the SSH request stream and pumps input until the
// channel closes or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	go s.serveRequests(ctx)
	return errors.Wrap(s.pump.Run(ctx, s.ch), "remote session ended")
}

func (s *Session) serveRequests(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-s.reqs:
			if !ok {
				return
			}
			s.handleRequest(req)
		}
	}
}

func (s *Session) handleRequest(req *ssh.Request) {
	switch req.Type {
	case "pty-req":
		var p ptyRequest
		if err := ssh.Unmarshal(req.Payload, &p); err == nil {
			s.term = p.Term
			s.size.Set(int(p.Cols), int(p.Rows))
			if pdebug.Enabled {
				pdebug.Printf("remote.Session: pty-req %s %dx%d", p.Term, p.Cols, p.Rows)
			}
			s.reply(req, true)
			return
		}
		s.reply(req, false)
	case "window-change":
		var w windowChange
		err := ssh.Unmarshal(req.Payload, &w)
		if err == nil {
			s.size.Set(int(w.Cols), int(w.Rows))
		}
		s.reply(req, err == nil)
	case "shell":
		s.reply(req, true)
	default:
		s.reply(req, false)
	}
}

func (s *Session) reply(req *ssh.Request, ok bool) {
	if req.WantReply {
		// the error only signals a dead connection; the pump sees it too
		_ = req.Reply(ok, nil)
	}
}
