// Copyright (c) 2026 Planora. All rights reserved.

// Package ctxutil provides typed accessors for per-request context values.
//
// # Architecture
//
// The shell middleware injects a correlation ID and a request-scoped logger
// into the context; handlers and the respond package read them back through
// these helpers instead of touching raw context keys.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/planora/edt-client/internal/platform/ctxkey"
)

// WithRequestID stores the correlation ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, requestID)
}

// GetRequestID returns the correlation ID, or "" when the request has none.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxkey.KeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithLogger stores a request-scoped logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request-scoped logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
