// Package logger builds the process-wide structured logger, following the
// teacher's one-function New() slot but upgraded from a bare *log.Logger
// to log/slog so every component can attach structured fields (shard id,
// counters, decode errors) instead of formatting them into a string.
package logger

import (
	"log/slog"
	"os"

	"ekyc-engine/internal/platform/config"
)

// New builds a *slog.Logger writing to stdout, JSON-formatted in
// production (format == LogFormatJSON) or human-readable text otherwise.
func New(format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if format == config.LogFormatText {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
