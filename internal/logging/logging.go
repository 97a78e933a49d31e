// Package logging builds the zerolog logger shared by every component.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level maps the CLI verbosity flags to a zerolog level. quiet wins over
// debug, and debug over verbose.
func Level(quiet, verbose, debug bool) zerolog.Level {
	switch {
	case quiet:
		return zerolog.Disabled
	case debug:
		return zerolog.DebugLevel
	case verbose:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}

// New returns a console logger writing to w at the given level.
// Debug-level loggers also record the caller.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	ctx := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(w),
	}).Level(level).With().Timestamp()
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// JSON returns a structured logger without console formatting, used when
// logs are shipped rather than read.
func JSON(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
