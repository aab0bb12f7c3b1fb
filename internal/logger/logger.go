// Package logger builds the zap loggers used by the CLI commands and
// holds the shared log-formatting helpers.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Structured field keys shared by everything that talks to a model.
const (
	fieldProvider = "ai_provider"
	fieldModel    = "ai_model"
)

func New(json bool, debug bool) (*zap.Logger, error) {
	cfg := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(zapcore.InfoLevel),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    encoderConfig(),
	}

	if json {
		cfg.Encoding = "json"
	}

	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return cfg.Build()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey: "step",

		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.RFC3339TimeEncoder,

		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}

// WithCommonFields tags the logger with the AI provider and model.
// Blank values are skipped; a nil logger falls back to a no-op one.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	fields := make([]zap.Field, 0, 2)
	if provider = strings.TrimSpace(provider); provider != "" {
		fields = append(fields, zap.String(fieldProvider, provider))
	}
	if model = strings.TrimSpace(model); model != "" {
		fields = append(fields, zap.String(fieldModel, model))
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// TruncateForLog caps s at limit runes for log previews, marking the
// cut with an ellipsis. A non-positive limit yields an empty string.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}

	return string(runes[:limit]) + "..."
}
