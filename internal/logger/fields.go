package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSession is the structured log field key for the session kind.
	FieldSession = "session"
	// FieldRole is the structured log field key for the selected target role.
	FieldRole = "target_role"
	// FieldResume is the structured log field key for the uploaded resume file name.
	FieldResume = "resume"
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

// WithFields attaches the provided fields to the logger, defaulting to a
// no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SessionFields describes a streaming session. Empty values are dropped.
func SessionFields(kind, role, resume string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSession, Value: kind},
		StringField{Key: FieldRole, Value: role},
		StringField{Key: FieldResume, Value: resume},
	)
}

// ForSession returns logger enriched with SessionFields.
func ForSession(logger *zap.Logger, kind, role, resume string) *zap.Logger {
	return WithFields(logger, SessionFields(kind, role, resume)...)
}
