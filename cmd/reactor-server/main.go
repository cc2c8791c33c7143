// File: cmd/reactor-server/main.go
// Author: momentics <momentics@gmail.com>
//
// CLI entry point: `reactor-server <port> [<port> ...]`. Only the first
// port is bound by the Reactor engine; additional ports are accepted
// for CLI compatibility and logged as unused. Shutdown is driven by
// SIGINT/SIGTERM.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/momentics/reactor-chat/server"
)

var (
	logLevel    string
	logEncoding string
	metricsAddr string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reactor-server <port> [<port> ...]",
		Short: "Reactor-based TCP chat server",
		Long: "reactor-server runs a single-process, epoll-driven TCP chat room: " +
			"the first port is bound by the Reactor engine; any further ports are " +
			"accepted for CLI compatibility but unused.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServer,
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&logEncoding, "log-encoding", "console", "log encoding: console, json")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics on (empty disables it)")
	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	ports := make([]int, 0, len(args))
	for _, a := range args {
		p, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", a, err)
		}
		ports = append(ports, p)
	}

	cfg := server.DefaultConfig()
	cfg.ListenPort = ports[0]
	cfg.ExtraPorts = ports[1:]

	srv, err := server.New(cfg,
		server.WithLogLevel(logLevel),
		server.WithLogEncoding(logEncoding),
		server.WithMetricsAddr(metricsAddr),
	)
	if err != nil {
		return err
	}

	ctx, stop := notifyShutdownContext(cmd.Context())
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("reactor-server: run: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
