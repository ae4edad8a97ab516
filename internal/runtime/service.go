package runtime

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohammad-safakhou/postfeed/internal/logging"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, service string, logger logging.Logger) (context.Context, context.CancelFunc) {
	if service == "" {
		service = "service"
	}
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-ctx.Done():
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", logging.String("service", service), logging.String("signal", sig.String()))
			cancel()
		}
	}()
	return ctx, cancel
}
