// Package applog sets up the desk's console logger the way
// cmd/riskdesk wants it at process start: RFC3339 as zerolog's timestamp
// field format, a human-readable console writer on stderr that prints
// times in time.Kitchen form, and a level parsed from
// config.Config.LogLevel.
package applog

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New configures the global zerolog clock/writer and returns a logger
// at the given level (INFO if level is empty or unrecognized).
func New(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).With().Timestamp().Logger()
}
