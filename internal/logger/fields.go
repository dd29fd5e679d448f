package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/job"
)

// Field keys shared by every package that logs agent or job activity.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"

	FieldPortal  = "portal"
	FieldCompany = "company"
	FieldTitle   = "title"
	FieldStatus  = "status"
)

type StringField struct {
	Key   string
	Value string
}

// StringFields turns pairs into zap fields. Pairs with a blank key or value
// are dropped and the rest are trimmed.
func StringFields(pairs ...StringField) []zap.Field {
	fields := make([]zap.Field, 0, len(pairs))
	for _, pair := range pairs {
		key, value := strings.TrimSpace(pair.Key), strings.TrimSpace(pair.Value)
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// WithFields returns log with fields attached. A nil log becomes a no-op one.
func WithFields(log *zap.Logger, fields ...zap.Field) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

// CommonFields names the agent backend and model behind a log entry.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithCommonFields(log *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(log, CommonFields(provider, model)...)
}

// JobFields describes a job record, skipping empty values.
func JobFields(rec *job.Record) []zap.Field {
	if rec == nil {
		return nil
	}

	return StringFields(
		StringField{Key: FieldPortal, Value: rec.Portal},
		StringField{Key: FieldCompany, Value: rec.Company},
		StringField{Key: FieldTitle, Value: rec.Title},
		StringField{Key: FieldStatus, Value: rec.Status},
	)
}
