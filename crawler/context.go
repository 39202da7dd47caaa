package crawler

import (
	"context"

	"go.uber.org/zap"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	URLKey       ContextKey = "url"
)

// GetContextLogger creates a logger with context information
func GetContextLogger(ctx context.Context, baseLogger *zap.Logger) *zap.Logger {
	logger := baseLogger

	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		logger = logger.With(zap.String("request_id", id))
	}
	if u, ok := ctx.Value(URLKey).(string); ok && u != "" {
		logger = logger.With(zap.String("url", u))
	}

	return logger
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func WithURL(ctx context.Context, u string) context.Context {
	return context.WithValue(ctx, URLKey, u)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
