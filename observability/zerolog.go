package observability

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger adapts a zerolog.Logger to the Logger interface.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NewZerologLogger(logger zerolog.Logger) Logger {
	return &zerologLogger{logger: logger}
}

// NewConsoleLogger returns a human-readable zerolog logger writing to w at the
// given minimum level. A nil writer means stderr.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NewConsoleLogger(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(toZerologLevel(level)).
		With().Timestamp().Logger()

	return &zerologLogger{logger: zl}
}

// NewJSONLogger returns a zerolog logger emitting one JSON object per line.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NewJSONLogger(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}

	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()

	return &zerologLogger{logger: zl}
}

func (l *zerologLogger) Debug(msg string, fields ...Field) {
	addFields(l.logger.Debug(), fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields ...Field) {
	addFields(l.logger.Info(), fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields ...Field) {
	addFields(l.logger.Warn(), fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields ...Field) {
	addFields(l.logger.Error(), fields).Msg(msg)
}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *zerologLogger) With(fields ...Field) Logger {
	zc := l.logger.With()
	for _, f := range fields {
		zc = zc.Interface(f.Key, f.Value)
	}

	return &zerologLogger{logger: zc.Logger()}
}

func addFields(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			event = event.AnErr(f.Key, err)
			continue
		}
		event = event.Interface(f.Key, f.Value)
	}

	return event
}

func toZerologLevel(level Level) zerolog.Level {
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
