package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey   contextKey = "request_id"
	productCodeKey contextKey = "product_code"
	supplierKey    contextKey = "supplier"
)

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithProductCode adds the part code being worked on to context
func WithProductCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, productCodeKey, code)
}

// WithSupplier adds supplier name to context
func WithSupplier(ctx context.Context, supplier string) context.Context {
	return context.WithValue(ctx, supplierKey, supplier)
}

// RequestIDFromContext returns the request id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the global logger decorated with whatever request,
// product and supplier fields the context carries.
func FromContext(ctx context.Context) *zap.Logger {
	var fields []zap.Field
	for _, key := range []contextKey{requestIDKey, productCodeKey, supplierKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}

	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// CodeField returns a zap field for a part code
func CodeField(code string) zap.Field {
	return zap.String(string(productCodeKey), code)
}
