package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// IntegrationIDKey is the context key for the integration being synced
	IntegrationIDKey contextKey = "integration_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enrichedLogger := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// WithIntegrationID adds the integration ID to context and returns enriched logger
func WithIntegrationID(ctx context.Context, logger *zap.Logger, integrationID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, IntegrationIDKey, integrationID)
	enrichedLogger := logger.With(zap.String("integration_id", integrationID))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetIntegrationID retrieves the integration ID from context
func GetIntegrationID(ctx context.Context) string {
	if integrationID, ok := ctx.Value(IntegrationIDKey).(string); ok {
		return integrationID
	}
	return ""
}
