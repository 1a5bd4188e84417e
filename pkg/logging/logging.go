// Package logging builds the structured loggers used by every command.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger on stderr tagged with component. Verbose enables
// debug records.
func New(verbose bool, component string) *slog.Logger {
	return NewWriter(os.Stderr, verbose, component)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, verbose bool, component string) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	if component != "" {
		l = l.With("component", component)
	}
	return l
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
