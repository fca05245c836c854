// Package logging provides a minimal structured logging interface so engine
// components can report progress and recoverable skips without binding to a
// concrete logger.
package logging

import (
	"io"
	"log/slog"
)

// Logger is the minimal logging interface used across the engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// New returns a text-format slog logger writing to w at the given level.
func New(w io.Writer, level slog.Level) Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NopLogger discards everything. Useful in tests and preview modes.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
