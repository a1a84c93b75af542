// Package logging is a small wrapper around log/slog used for every
// operator-facing diagnostic the interpreter produces: load failures,
// fault reports, an optional run summary, and optional per-instruction
// tracing. It never sees guest-program output, which always goes straight
// to the terminal's own output stream.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// handler formats records as a single timestamped line:
//
//	2006/01/02 15:04:05 LEVEL message key=value key=value
//
// in the style of the prefixed, single-line loggers used throughout the
// teacher pack's larger example systems.
type handler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Leveler
}

// New returns a slog.Logger that writes to out. If out is nil, os.Stderr is
// used so that diagnostics never land on the same stream as guest-program
// output written through a Terminal.
func New(out io.Writer, level slog.Level) *slog.Logger {
	if out == nil {
		out = os.Stderr
	}
	h := &handler{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
	}
	return slog.New(h)
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006/01/02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)

	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// The interpreter never builds attribute groups ahead of time; every
	// call site passes its key/value pairs directly, so there is nothing
	// to carry forward here.
	return h
}

func (h *handler) WithGroup(name string) slog.Handler {
	return h
}

// OpenLogFile opens path for append, creating it if necessary, for use
// with the command-line front end's -log flag.
func OpenLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Since returns the elapsed time formatted for a run-summary log line.
func Since(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
