package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every log line
const ServiceName = "content-lifecycle-console"

// New creates a new zerolog logger with structured output
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	logLevel := ParseLevel(os.Getenv("LOG_LEVEL"))

	// Use pretty console output in development
	if os.Getenv("ENV") == "development" || os.Getenv("LOG_FORMAT") == "pretty" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Str("service", ServiceName).
			Logger()
	}

	// JSON output for production
	return zerolog.New(os.Stdout).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
