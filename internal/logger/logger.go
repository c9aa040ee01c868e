// Package logger provides structured, leveled logging for the gateway.
package logger

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Level is the minimum severity a logger emits.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LoggerInterface is the logging contract used across the application.
// Key/value pairs follow the message as alternating keys and values.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, kv ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, kv ...any)
	With(kv ...any) LoggerInterface
}

// Logger implements LoggerInterface on top of zerolog.
type Logger struct {
	zl zerolog.Logger
}

// New creates a Logger writing to w at the given level, tagged with the
// service name.
func New(w io.Writer, level Level, service string) *Logger {
	zl := zerolog.New(w).
		Level(toZerolog(level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()
	return &Logger{zl: zl}
}

func toZerolog(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.emit(ctx, l.zl.Debug(), msg, kv)
}

func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.emit(ctx, l.zl.Info(), msg, kv)
}

func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.emit(ctx, l.zl.Warn(), msg, kv)
}

func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.emit(ctx, l.zl.Error(), msg, kv)
}

// With returns a child logger with the given fields bound.
func (l *Logger) With(kv ...any) LoggerInterface {
	zc := l.zl.With()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		zc = zc.Interface(key, kv[i+1])
	}
	return &Logger{zl: zc.Logger()}
}

// emit attaches the active trace id (when present) so log lines correlate
// with spans.
func (l *Logger) emit(ctx context.Context, ev *zerolog.Event, msg string, kv []any) {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ev = ev.Str("trace_id", sc.TraceID().String())
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}
