package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type cronLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger adapts zap to cron.Logger. Cron's chatty info messages go to debug.
func NewLogger(logger *zap.Logger) cron.Logger {
	return cronLogger{sugar: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
