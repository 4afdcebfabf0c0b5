// Package logger provides the key/value logging contract used by every
// component, plus a zerolog-backed implementation for binaries.
package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging operations.
// This allows users to plug in their own logger (zap, logrus, etc.)
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// NoopLogger is a no-operation logger that discards all log messages
type NoopLogger struct{}

func (NoopLogger) Debug(msg string, keysAndValues ...any) {}
func (NoopLogger) Info(msg string, keysAndValues ...any)  {}
func (NoopLogger) Warn(msg string, keysAndValues ...any)  {}
func (NoopLogger) Error(msg string, keysAndValues ...any) {}

// Ensure ZeroLogger implements Logger
var _ Logger = (*ZeroLogger)(nil)

// ZeroLogger adapts zerolog.Logger to the Logger interface
type ZeroLogger struct {
	zlog zerolog.Logger
}

// New creates a ZeroLogger writing to w at the given level.
// Unknown levels fall back to info. If pretty is true, output is
// formatted for humans instead of JSON.
func New(level string, pretty bool, w io.Writer) *ZeroLogger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zLevel = zerolog.InfoLevel
	}

	l := zerolog.New(w).With().Timestamp().Logger().Level(zLevel)
	return &ZeroLogger{zlog: l}
}

// Zerolog exposes the underlying logger
func (l *ZeroLogger) Zerolog() zerolog.Logger {
	return l.zlog
}

func (l *ZeroLogger) Debug(msg string, keysAndValues ...any) {
	l.log(l.zlog.Debug(), msg, keysAndValues)
}

func (l *ZeroLogger) Info(msg string, keysAndValues ...any) {
	l.log(l.zlog.Info(), msg, keysAndValues)
}

func (l *ZeroLogger) Warn(msg string, keysAndValues ...any) {
	l.log(l.zlog.Warn(), msg, keysAndValues)
}

func (l *ZeroLogger) Error(msg string, keysAndValues ...any) {
	l.log(l.zlog.Error(), msg, keysAndValues)
}

func (l *ZeroLogger) log(event *zerolog.Event, msg string, keysAndValues []any) {
	if event == nil {
		return
	}

	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 >= len(keysAndValues) {
			event = event.Str(key, "MISSING")
			break
		}

		switch v := keysAndValues[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		case time.Duration:
			event = event.Dur(key, v)
		default:
			event = event.Interface(key, v)
		}
	}

	event.Msg(msg)
}
