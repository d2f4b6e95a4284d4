package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithSignal returns a context canceled on SIGINT or SIGTERM. Calling stop
// restores default handling, so a second signal terminates immediately.
func WithSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
