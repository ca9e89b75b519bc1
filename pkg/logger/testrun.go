package logger

import (
	"io"
	"log/slog"
)

// NewTestHandler discards all output; tests that need a logger use this.
func NewTestHandler(_ slog.Level) slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}
