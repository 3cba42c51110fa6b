package database

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext derives a context that is canceled on SIGTERM or SIGINT so an
// in-flight count query is abandoned and the connection closed. onSignal, if
// set, runs before cancellation. The returned stop function releases the
// signal registration and cancels the context.
func SignalContext(parent context.Context, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case sig := <-sigChan:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
			// Context was cancelled elsewhere
		}
	}()

	stop := func() {
		signal.Stop(sigChan)
		cancel()
	}
	return ctx, stop
}
