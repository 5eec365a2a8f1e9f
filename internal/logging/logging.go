package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the pipeline logger. Diagnostics always go to stderr so they
// never mix with exported JSON on stdout. Quiet keeps errors visible but
// drops progress chatter.
func New(level zerolog.Level, quiet bool) zerolog.Logger {
	if quiet && level < zerolog.ErrorLevel {
		level = zerolog.ErrorLevel
	}
	return newWriter(os.Stderr, level)
}

// NewWriter builds a logger against an arbitrary sink, for tests.
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return newWriter(w, level)
}

func newWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// ParseLevel converts a flag value ("debug", "info", "warn", "error") to a
// zerolog level. Unknown strings default to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
