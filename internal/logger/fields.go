package logger

import (
	"strings"

	"go.uber.org/zap"
)

// FieldComponent is the structured log field key naming the client component
// that emitted the entry.
const FieldComponent = "component"

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithComponent returns a logger scoped to the named component. Empty names
// leave the logger untagged.
func WithComponent(logger *zap.Logger, name string) *zap.Logger {
	fields := StringFields(StringField{Key: FieldComponent, Value: name})
	return WithFields(logger, fields...)
}
