package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/tvision-go/tvision"
	"github.com/tvision-go/tvision/backend"
	"github.com/tvision-go/tvision/config"
	"github.com/tvision-go/tvision/event"
	"github.com/tvision-go/tvision/geom"
	"github.com/tvision-go/tvision/view"
)

var version = "v0.1.0"

type cmdOptions struct {
	OptRcfile  string `long:"rcfile" description:"path to the settings file"`
	OptVersion bool   `long:"version" description:"print the version and exit"`
}

// background fills the desktop with the classic dithered pattern.
type background struct {
	view.Base
}

func (b *background) Draw(s *view.Surface) {
	w, h := s.Size()
	s.Fill(geom.NewRect(0, 0, w, h), '░', 0x17)
}

// statusLine shows the quit hint and consumes clicks on it.
type statusLine struct {
	view.Base
}

func (s *statusLine) Draw(surf *view.Surface) {
	w, _ := surf.Size()
	surf.Fill(geom.NewRect(0, 0, w, 1), ' ', 0x30)
	surf.Print(1, 0, 0x30, "Alt-X Exit │ F10 Exit")
}

func (s *statusLine) HandleEvent(ev *event.Event) {
	if ev.What == event.MouseDown {
		ev.Clear()
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts cmdOptions
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if opts.OptVersion {
		fmt.Fprintf(os.Stderr, "tvdemo: %s\n", version)
		return 0
	}

	cfg := config.New()
	if opts.OptRcfile != "" {
		if err := cfg.ReadFilename(opts.OptRcfile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	term := tvision.New(
		backend.NewLocal(
			backend.WithEscWindow(cfg.EscWindowDuration()),
			backend.WithLocalClickWindow(cfg.DoubleClickDuration()),
		),
		cfg,
	)

	bg := &background{Base: view.NewBase(geom.NewRect(0, 0, 0, 0))}
	term.Desktop().Insert(bg)
	term.SetStatusLine(&statusLine{Base: view.NewBase(geom.NewRect(0, 0, 0, 0))})

	if err := term.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
