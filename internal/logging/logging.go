// Package logging sets up the daemon's structured logger. The Python
// original configures the stdlib `logging` module per-component via
// `logging.getLogger(__name__)`; this carries the same component-scoped
// pattern over to zerolog's sub-loggers instead.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New configures the base logger: console-formatted in a TTY (kitchen-clock
// timestamps), JSON lines with RFC3339 timestamps otherwise
// (systemd/container logs), level from the
// LOG_LEVEL env var (defaults to info).
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var writer = os.Stderr
	var out zerolog.ConsoleWriter
	if isTerminal(writer) {
		out = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen}
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Component returns a child logger tagged with a "component" field,
// mirroring the original's per-module getLogger(__name__) scoping.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
