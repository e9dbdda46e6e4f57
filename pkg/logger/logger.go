package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pdf-highlighter/internal/domain"

	"github.com/rs/zerolog"
)

// AppLogger implements the domain.Logger interface on top of zerolog
type AppLogger struct {
	zlog zerolog.Logger
}

// NewLogger creates a new logger instance writing JSON lines to stdout, or
// human-readable lines when pretty is set.
func NewLogger(levelStr string, pretty bool) domain.Logger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, levelStr)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, levelStr string) domain.Logger {
	zlog := zerolog.New(w).
		Level(parseLogLevel(levelStr)).
		With().
		Timestamp().
		Str("service", "pdf-highlighter").
		Logger()
	return &AppLogger{zlog: zlog}
}

// NewNop returns a logger that discards everything.
func NewNop() domain.Logger {
	return &AppLogger{zlog: zerolog.Nop()}
}

// Info logs an info message
func (l *AppLogger) Info(msg string, fields ...interface{}) {
	withFields(l.zlog.Info(), fields).Msg(msg)
}

// Error logs an error message
func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	withFields(l.zlog.Error().Err(err), fields).Msg(msg)
}

// Debug logs a debug message
func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	withFields(l.zlog.Debug(), fields).Msg(msg)
}

// Warn logs a warning message
func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	withFields(l.zlog.Warn(), fields).Msg(msg)
}

// withFields attaches key/value pairs; a trailing key without value is dropped.
func withFields(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	if e == nil {
		return e
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		e = e.Interface(key, fields[i+1])
	}
	return e
}

// parseLogLevel converts string log level to a zerolog level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
