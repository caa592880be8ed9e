// Package logging configures the process-wide zerolog logger. Diagnostics
// always go to stderr: stdout is reserved for the single structured result.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New creates a logger writing to stderr. Format "console" (or "pretty")
// produces human-readable output; anything else emits JSON lines.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	switch strings.ToLower(format) {
	case "console", "pretty":
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	default:
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}
