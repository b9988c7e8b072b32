package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldPipeline is the structured log field key for the pipeline name.
	FieldPipeline = "pipeline"
	// FieldSource is the structured log field key for the file a pipeline was loaded from.
	FieldSource = "source"
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

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

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// PipelineFields describes the pipeline being evaluated.
func PipelineFields(pipeline, source string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPipeline, Value: pipeline},
		StringField{Key: FieldSource, Value: source},
	)
}

// WithPipelineFields attaches the pipeline fields to logger.
func WithPipelineFields(logger *zap.Logger, pipeline, source string) *zap.Logger {
	return WithFields(logger, PipelineFields(pipeline, source)...)
}

// AIFields describes the AI provider and model. Empty values are ignored.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithAIFields attaches the AI fields to logger.
func WithAIFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}
