// Package logger wraps zap with the small surface the daemon and the
// export worker use. The engine packages stay silent and return errors;
// logging happens at the edges.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is a thin wrapper over zap's sugared logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a logger for the given mode: "production" emits JSON,
// anything else the development console encoder.
func New(mode string) (*Logger, error) {
	var (
		base *zap.Logger
		err  error
	)
	if mode == "production" {
		base, err = zap.NewProduction()
	} else {
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{sugar: base.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used in tests and as
// the default for embedders that do not care.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// With returns a child logger with additional key/value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sugar: l.sugar.With(args...)}
}

func (l *Logger) Debugw(msg string, kv ...any) { l.sugar.Debugw(msg, kv...) }
func (l *Logger) Infow(msg string, kv ...any)  { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warnw(msg string, kv ...any)  { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Errorw(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }

// Sync flushes buffered entries. Safe to call on shutdown.
func (l *Logger) Sync() error { return l.sugar.Sync() }
