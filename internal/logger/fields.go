package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldProfileURL identifies the prospect an entry is about.
	FieldProfileURL = "profile_url"
	// FieldGeneration is the analysis session generation.
	FieldGeneration = "session_generation"
	FieldGoal       = "analysis_goal"
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

// WithFields safely attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns standard zap fields that describe the AI provider and model.
// Empty values are ignored to keep log entries compact when information is missing.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the common AI fields to the provided logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// SessionFields describes one analysis session. A zero generation is omitted.
func SessionFields(generation uint64, profileURL, goal string) []zap.Field {
	var gen string
	if generation > 0 {
		gen = strconv.FormatUint(generation, 10)
	}
	return StringFields(
		StringField{Key: FieldGeneration, Value: gen},
		StringField{Key: FieldProfileURL, Value: profileURL},
		StringField{Key: FieldGoal, Value: goal},
	)
}

// WithSession attaches the session fields to the provided logger.
func WithSession(logger *zap.Logger, generation uint64, profileURL, goal string) *zap.Logger {
	return WithFields(logger, SessionFields(generation, profileURL, goal)...)
}
