package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	sessionIDKey ctxKey = iota
	formIDKey
)

// WithSessionID returns a context carrying the form session ID.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// WithFormID returns a context carrying the form ID.
func WithFormID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, formIDKey, id)
}

// SessionID extracts the session ID from the context, or "" if absent.
func SessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// FormID extracts the form ID from the context, or "" if absent.
func FormID(ctx context.Context) string {
	v, _ := ctx.Value(formIDKey).(string)
	return v
}

// LogWith returns a logger enriched with the correlation IDs from ctx.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := SessionID(ctx); id != "" {
		logger = logger.With(slog.String("session_id", id))
	}
	if id := FormID(ctx); id != "" {
		logger = logger.With(slog.String("form_id", id))
	}
	return logger
}

// CorrelationHandler injects correlation IDs from the context into every
// record, so logger.InfoContext(ctx, ...) is enough.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps inner.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	if v := SessionID(ctx); v != "" {
		r.AddAttrs(slog.String("session_id", v))
	}
	if v := FormID(ctx); v != "" {
		r.AddAttrs(slog.String("form_id", v))
	}
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
