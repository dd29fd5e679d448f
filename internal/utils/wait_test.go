package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	var slept []time.Duration
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = time.Sleep })

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("zero wait: %v", err)
	}
	if err := WaitFor(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(slept) != 1 || slept[0] != 5*time.Second {
		t.Fatalf("unexpected sleeps: %v", slept)
	}
}

func TestWaitForCancelled(t *testing.T) {
	block := make(chan struct{})
	sleep = func(time.Duration) { <-block }
	t.Cleanup(func() {
		close(block)
		sleep = time.Sleep
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
