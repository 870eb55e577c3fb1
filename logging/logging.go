/*
Package logging builds the zerolog loggers used across the service.

PURPOSE:
  One place that knows how loggers are constructed. Components receive a
  zerolog.Logger value and never configure output themselves.

VARIANTS:
  New     structured JSON, for the HTTP service
  Pretty  human-readable console output, for the audit CLI
  Nop     discards everything, for tests

LEVELS:
  Level names follow zerolog: trace, debug, info, warn, error. Unknown
  names fall back to info.
*/
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to w at the named level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// Pretty returns a console logger for interactive runs.
func Pretty(w io.Writer, level string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(console).Level(parseLevel(level)).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
