package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the root logger. Debug mode switches to a human-readable
// console writer.
func NewLogger(level string, debug bool) *zerolog.Logger {
	var w io.Writer = os.Stdout
	if debug {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if debug && lvl > zerolog.DebugLevel {
		lvl = zerolog.DebugLevel
	}

	logger := zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "telepost").Logger()
	return &logger
}

// Nop returns a logger that discards everything, for tests and optional wiring.
func Nop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
