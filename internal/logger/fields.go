package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldSessionID correlates all entries of one interview.
	FieldSessionID = "session_id"
	FieldJobRole   = "job_role"
	FieldPhase     = "phase"
	// FieldQuestionIndex is the zero-based index of the question in play.
	FieldQuestionIndex = "question_index"
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
// A nil logger is replaced by a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AIFields returns fields describing the AI provider and model. Empty values are skipped.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithAIFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}

// SessionFields describes the state of an interview session.
func SessionFields(sessionID, jobRole string, phase fmt.Stringer, questionIndex int) []zap.Field {
	fields := StringFields(
		StringField{Key: FieldSessionID, Value: sessionID},
		StringField{Key: FieldJobRole, Value: jobRole},
	)

	if phase != nil {
		fields = append(fields, zap.String(FieldPhase, phase.String()))
	}

	return append(fields, zap.Int(FieldQuestionIndex, questionIndex))
}
