// Package logger builds the zap loggers used across job-bot and the field
// helpers that keep log entries consistent.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the command logger. It writes to stdout.
func New(json bool, debug bool) (*zap.Logger, error) {
	return build(json, debug, "stdout")
}

// NewStderr is New for commands whose stdout carries protocol traffic.
func NewStderr(json bool, debug bool) (*zap.Logger, error) {
	return build(json, debug, "stderr")
}

func build(json, debug bool, output string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoding := "console"
	if json {
		encoding = "json"
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}

	return cfg.Build()
}
