// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package logger wraps log/slog with the defaults used by osm2csv.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper around slog.Logger.
type Logger struct {
	*slog.Logger
}

// New returns a text logger writing to stderr. Stdout is reserved for the
// conversion summary.
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a text logger writing to output.
func NewLogger(level slog.Level, output io.Writer) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLogger(slog.LevelError+1, io.Discard)
}

// Err returns the error as a slog attribute under the "error" key.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
