// Package ctxinterrupt ties context cancellation to process interrupts.
package ctxinterrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var DefaultInterruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// WithCancelOnInterrupt returns a context that is cancelled when the process
// receives one of the DefaultInterruptSignals, or when the parent is done.
func WithCancelOnInterrupt(ctx context.Context) context.Context {
	return WithSignalsCancel(ctx, DefaultInterruptSignals...)
}

func WithSignalsCancel(ctx context.Context, signals ...os.Signal) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, signals...)
	go func() {
		defer signal.Stop(interruptChannel)
		select {
		case <-interruptChannel:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
