package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds a production ready structured logger.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	return cfg.Build()
}

// WithOperation enriches the logger with operation and image identifiers.
func WithOperation(logger *zap.Logger, operation, imageID string) *zap.Logger {
	fields := []zap.Field{zap.String("operation", operation)}
	if imageID != "" {
		fields = append(fields, zap.String("image_id", imageID))
	}
	return logger.With(fields...)
}
