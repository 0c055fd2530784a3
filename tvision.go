// Package tvision is a text-mode windowing toolkit: a desktop of
// overlapping views driven by keyboard and mouse input, over either
// the local terminal or a remote byte channel. This package holds the
// session object and the event router; the subpackages supply the
// primitives (geom, event), the command registry, the wire decoder
// (ansi), and the transports (backend, remote).
package tvision

import (
	"log"
	"os"
	"strconv"
)

type traceLogger interface {
	Printf(string, ...interface{})
}

type nullTraceLogger struct{}

func (ntl nullTraceLogger) Printf(_ string, _ ...interface{}) {}

var tracer traceLogger = nullTraceLogger{}

func init() {
	if v, err := strconv.ParseBool(os.Getenv("TVISION_TRACE")); err == nil && v {
		tracer = log.New(os.Stderr, "tvision: ", log.LstdFlags)
		tracer.Printf("==== INITIALIZED tracer ====")
	}
}
