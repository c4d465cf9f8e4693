package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger interface for structured logging.
// Fields are alternating key/value pairs.
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Fatal(msg string, err error, fields ...interface{})
	With(fields ...interface{}) Logger
}

// ZeroLogger implements Logger on top of zerolog
type ZeroLogger struct {
	zl zerolog.Logger
}

// New creates a logger for the given service. Development output is
// human readable; everything else is JSON with timestamp and caller.
func New(serviceName, env, level string) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var zl zerolog.Logger
	if env == "development" {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Str("service", serviceName).Logger()
	} else {
		zl = zerolog.New(os.Stdout).
			With().
			Timestamp().
			CallerWithSkipFrameCount(3).
			Str("service", serviceName).
			Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return &ZeroLogger{zl: zl.Level(lvl)}
}

// NewWithWriter creates a JSON logger writing to w, used by tests and tools
func NewWithWriter(w io.Writer) Logger {
	return &ZeroLogger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// Nop returns a logger that discards everything
func Nop() Logger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

// Info logs an info message
func (l *ZeroLogger) Info(msg string, fields ...interface{}) {
	withFields(l.zl.Info(), fields).Msg(msg)
}

// Error logs an error message
func (l *ZeroLogger) Error(msg string, err error, fields ...interface{}) {
	withFields(l.zl.Error().Err(err), fields).Msg(msg)
}

// Warn logs a warning message
func (l *ZeroLogger) Warn(msg string, fields ...interface{}) {
	withFields(l.zl.Warn(), fields).Msg(msg)
}

// Debug logs a debug message
func (l *ZeroLogger) Debug(msg string, fields ...interface{}) {
	withFields(l.zl.Debug(), fields).Msg(msg)
}

// Fatal logs a fatal error and exits
func (l *ZeroLogger) Fatal(msg string, err error, fields ...interface{}) {
	withFields(l.zl.Fatal().Err(err), fields).Msg(msg)
}

// With returns a child logger that always carries fields
func (l *ZeroLogger) With(fields ...interface{}) Logger {
	ctx := l.zl.With()
	for i := 0; i < len(fields); i += 2 {
		key, val := pair(fields, i)
		ctx = ctx.Interface(key, val)
	}
	return &ZeroLogger{zl: ctx.Logger()}
}

func withFields(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i < len(fields); i += 2 {
		key, val := pair(fields, i)
		e = e.Interface(key, val)
	}
	return e
}

func pair(fields []interface{}, i int) (string, interface{}) {
	key, ok := fields[i].(string)
	if !ok {
		key = fmt.Sprintf("%v", fields[i])
	}
	if i+1 >= len(fields) {
		return key, "(MISSING)"
	}
	return key, fields[i+1]
}
