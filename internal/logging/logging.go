// Package logging configures the process logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger for the named tool at the given level.
// Unknown levels fall back to info.
func New(tool, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Str("tool", tool).
		Logger()
}
