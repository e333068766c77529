package logging

import (
	"context"
	"fmt"
	"log/slog"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying the given request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID extracts the request id from ctx, returning ("", false) if absent.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// RequestIDHandler wraps a slog.Handler and adds a "request_id" attribute
// when the record's context carries one.
type RequestIDHandler struct {
	inner slog.Handler
}

func NewRequestIDHandler(inner slog.Handler) *RequestIDHandler {
	return &RequestIDHandler{inner: inner}
}

func (h *RequestIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RequestIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := RequestID(ctx); ok {
		r.AddAttrs(slog.String("request_id", id))
	}
	if err := h.inner.Handle(ctx, r); err != nil {
		return fmt.Errorf("request id handler: %w", err)
	}
	return nil
}

func (h *RequestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RequestIDHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *RequestIDHandler) WithGroup(name string) slog.Handler {
	return &RequestIDHandler{inner: h.inner.WithGroup(name)}
}
