package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadSpec(t *testing.T) {
	t.Parallel()

	if _, err := New("every tuesday", func(context.Context) error { return nil }, nil); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestRunImmediatelyAndStop(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	s, err := New("@daily", func(context.Context) error {
		runs.Add(1)
		cancel()
		return errors.New("portal down")
	}, zap.New(core))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, true) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	if runs.Load() != 1 {
		t.Fatalf("expected one run, got %d", runs.Load())
	}
	if logs.FilterMessage("scheduled run failed").Len() != 1 {
		t.Fatal("expected the failure to be logged")
	}
	if logs.FilterMessage("scheduler stopped").Len() != 1 {
		t.Fatal("expected stop to be logged")
	}
	if next := s.Next(); next.IsZero() {
		t.Fatal("expected next run time once started")
	}
}

func TestCronLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogger(zap.New(core))

	l.Info("wake", "now", "x")
	l.Error(errors.New("boom"), "panic", "entry", 1)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].ContextMap()["now"] != "x" {
		t.Fatalf("unexpected info entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].ContextMap()["error"] != "boom" {
		t.Fatalf("unexpected error entry: %+v", entries[1])
	}
}
