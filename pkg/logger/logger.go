// Package logger provides the structured logger shared by all application
// components. It is a thin wrapper around zerolog so call sites stay
// decoupled from the backend.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Logger emits structured log records tagged with a component name.
type Logger struct {
	mu sync.Mutex
	zl zerolog.Logger
}

// New creates a logger for the named component writing to w.
func New(component string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return &Logger{zl: zl}
}

// NewDefault creates a logger for the named component writing to stderr.
func NewDefault(component string) *Logger {
	return New(component, os.Stderr)
}

// SetOutput redirects the logger's output. Mainly used by tests and examples.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl = l.zl.Output(w)
}

// WithField returns a logger that includes the given key/value on every
// record it emits.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// WithError returns a logger that includes the error on every record.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().AnErr("error", err).Logger()}
}

func (l *Logger) Debug(msg string)                          { l.zl.Debug().Msg(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.zl.Debug().Msgf(format, args...) }
func (l *Logger) Info(msg string)                           { l.zl.Info().Msg(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.zl.Info().Msgf(format, args...) }
func (l *Logger) Warn(msg string)                           { l.zl.Warn().Msg(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.zl.Warn().Msgf(format, args...) }
func (l *Logger) Error(msg string)                          { l.zl.Error().Msg(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.zl.Error().Msgf(format, args...) }
