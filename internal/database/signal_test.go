package database

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSignalContext_NotCancelledWithoutSignal(t *testing.T) {
	ctx, stop := SignalContext(context.Background(), nil)
	defer stop()

	time.Sleep(20 * time.Millisecond)

	select {
	case <-ctx.Done():
		t.Error("Context should not be cancelled without signal")
	default:
		// Expected
	}
}

func TestSignalContext_StopCancels(t *testing.T) {
	called := false
	ctx, stop := SignalContext(context.Background(), func(os.Signal) { called = true })

	stop()

	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("stop() should cancel the context")
	}
	if called {
		t.Error("callback should not run without a signal")
	}
}

func TestSignalContext_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent, nil)
	defer stop()

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Error("child context should follow the parent")
	}
}

func TestSignalContext_SignalRunsCallback(t *testing.T) {
	if os.Getenv("CI") == "true" {
		t.Skip("Skipping signal test in CI environment")
	}

	received := make(chan os.Signal, 1)
	ctx, stop := SignalContext(context.Background(), func(sig os.Signal) {
		received <- sig
	})
	defer stop()

	time.Sleep(10 * time.Millisecond)
	syscall.Kill(syscall.Getpid(), syscall.SIGINT)

	select {
	case <-ctx.Done():
		if sig := <-received; sig != syscall.SIGINT {
			t.Errorf("Expected signal SIGINT, got %v", sig)
		}
	case <-time.After(200 * time.Millisecond):
		t.Error("Context was not cancelled after receiving signal")
	}
}
