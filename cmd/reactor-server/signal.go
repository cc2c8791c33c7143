// File: cmd/reactor-server/signal.go
// Author: momentics <momentics@gmail.com>
//
// Signal-aware shutdown context for the CLI entry point.

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout is the deadline of the context handed to Shutdown after
// SIGINT/SIGTERM. Only the metrics HTTP server's shutdown observes it;
// closing the chat connections and joining the worker do not.
const shutdownTimeout = 10 * time.Second

// notifyShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func notifyShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
