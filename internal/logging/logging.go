// Package logging adapts zap to the nakama runtime.Logger interface so the standalone
// server and the Nakama plugin share the same logging calls.
package logging

import (
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger implements runtime.Logger on top of a zap logger.
type Logger struct {
	base   *zap.Logger
	fields map[string]interface{}
}

var _ runtime.Logger = (*Logger)(nil)

// New builds a production logger at the given level ("debug", "info", "warn", "error").
// Development mode switches to the console encoder.
func New(level string, development bool) (*Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return Wrap(z), nil
}

// Wrap adapts an existing zap logger.
func Wrap(z *zap.Logger) *Logger {
	return &Logger{base: z, fields: map[string]interface{}{}}
}

// Zap returns the underlying zap logger.
func (l *Logger) Zap() *zap.Logger { return l.base }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.base.Sync() }

func (l *Logger) Debug(format string, v ...interface{}) {
	l.base.Debug(fmt.Sprintf(format, v...))
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.base.Info(fmt.Sprintf(format, v...))
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.base.Warn(fmt.Sprintf(format, v...))
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.base.Error(fmt.Sprintf(format, v...))
}

func (l *Logger) WithField(key string, v interface{}) runtime.Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

func (l *Logger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		merged[k] = v
		zf = append(zf, zap.Any(k, v))
	}
	return &Logger{base: l.base.With(zf...), fields: merged}
}

func (l *Logger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		out[k] = v
	}
	return out
}
