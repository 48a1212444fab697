package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID    contextKey = "run_id"
	ContextKeyDocument contextKey = "document"
)

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithDocument tags the context with the document being processed
func WithDocument(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, ContextKeyDocument, label)
}

// DocumentFromContext extracts the document label from context
func DocumentFromContext(ctx context.Context) string {
	if label, ok := ctx.Value(ContextKeyDocument).(string); ok {
		return label
	}
	return ""
}

// LoggerFrom decorates logger with the run and document carried by ctx.
func LoggerFrom(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := RunIDFromContext(ctx); id != "" {
		logger = logger.With("run_id", id)
	}
	if doc := DocumentFromContext(ctx); doc != "" {
		logger = logger.With("doc", doc)
	}
	return logger
}
