// Package logging provides structured logging configuration using log/slog.
//
// This package integrates with chi's RequestID middleware to propagate
// request IDs through structured log entries, so the log lines of one
// validation run can be correlated with the HTTP request that started it.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup configures the global slog logger to write to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	SetupWriter(os.Stdout, level, format)
}

// SetupWriter configures the global slog logger to write to w.
// The CLI uses it with stderr so stdout carries only the report.
func SetupWriter(w io.Writer, level, format string) {
	slog.SetDefault(slog.New(newHandler(w, level, format)))
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns a logger enriched with request context.
//
// When called with a request context that contains a chi RequestID,
// the returned logger includes request_id in all log entries.
//
// Usage:
//
//	func handleValidate(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("validation requested", "file", header.Filename)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// Usage:
//
//	runLogger := logging.WithFields(ctx,
//	    "run_id", runID,
//	    "file", fileName,
//	)
//	runLogger.Info("validation started")
//	// ... later ...
//	runLogger.Info("validation finished", "errors", len(result.Errors))
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
