package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		json  bool
		debug bool
		build func(bool, bool) (*zap.Logger, error)
	}{
		{name: "console info", build: New},
		{name: "json debug", json: true, debug: true, build: New},
		{name: "stderr debug", debug: true, build: NewStderr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, err := tt.build(tt.json, tt.debug)
			if err != nil {
				t.Fatalf("build logger: %v", err)
			}
			if got := log.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
				t.Fatalf("debug enabled = %v, want %v", got, tt.debug)
			}
		})
	}
}
