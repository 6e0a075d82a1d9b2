// Package logger provides leveled logging with support for debug, info, warn, and error levels.
// It wraps zerolog to provide level-based filtering and formatted output in either
// human-readable console form or structured JSON.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var defaultLogger zerolog.Logger

func init() {
	defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init initializes the default logger with the specified level and format.
// Format "text" produces a console-friendly output; anything else emits JSON.
func Init(level string, format string) {
	var l zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.InfoLevel
	}

	var out = zerolog.New(os.Stderr)
	if strings.ToLower(format) == "text" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05.000"})
	}

	defaultLogger = out.Level(l).With().Timestamp().Logger()
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug().Msg(fmt.Sprintf(format, args...))
}

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) {
	defaultLogger.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) {
	defaultLogger.Error().Msg(fmt.Sprintf(format, args...))
}

// Fatal logs a message at ErrorLevel and exits
func Fatal(format string, args ...interface{}) {
	defaultLogger.Error().Msg(fmt.Sprintf(format, args...))
	os.Exit(1)
}
