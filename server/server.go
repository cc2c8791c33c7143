// File: server/server.go
// Author: momentics <momentics@gmail.com>
//
// Server is the facade that wires the whole chat room together:
// listening socket, demultiplexer, Reactor, FIFO queue, chat-room
// worker, metrics and logging.

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/momentics/reactor-chat/adapters"
	"github.com/momentics/reactor-chat/api"
	"github.com/momentics/reactor-chat/chatroom"
	"github.com/momentics/reactor-chat/internal/bufpool"
	"github.com/momentics/reactor-chat/internal/conn"
	"github.com/momentics/reactor-chat/internal/queue"
	"github.com/momentics/reactor-chat/internal/sockutil"
	"github.com/momentics/reactor-chat/logging"
	"github.com/momentics/reactor-chat/metrics"
	"github.com/momentics/reactor-chat/reactor"
)

// ErrAlreadyRunning is returned by Run if called more than once on the
// same Server.
var ErrAlreadyRunning = errors.New("server: already running")

// Server owns every long-lived piece of one reactor-chat instance: the
// listening socket, the Reactor (demultiplexer + connection table), the
// cross-goroutine FIFO, the chat-room worker, and the ambient
// logging/metrics surfaces.
type Server struct {
	cfg *Config
	log *zap.Logger

	promReg *prometheus.Registry
	metrics *metrics.Registry
	control api.Control

	queue    *queue.FIFO
	reactor  *reactor.Reactor
	worker   *chatroom.Worker
	bufs     *bufpool.Pool
	listenFD int

	httpSrv *http.Server
	running bool
	ready   chan struct{}
}

// New builds a Server from cfg (DefaultConfig() if nil) and opts, but
// does not yet bind a socket or start any goroutine; that happens in Run.
func New(cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	for _, o := range opts {
		o(cfg)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return nil, fmt.Errorf("server: build logger: %w", err)
	}

	promReg := prometheus.NewRegistry()
	reg := metrics.New(promReg)
	ctrl := adapters.NewControlAdapter()

	demux, err := reactor.NewDemultiplexer()
	if err != nil {
		return nil, api.NewError(api.ErrCodeConfig, "demultiplexer unavailable").WithContext("err", err.Error())
	}

	s := &Server{
		cfg:     cfg,
		log:     log,
		promReg: promReg,
		metrics: reg,
		control: ctrl,
		queue:   queue.New(),
		reactor: reactor.New(demux, log),
		bufs:    bufpool.New(),
		ready:   make(chan struct{}),
	}
	return s, nil
}

// Run binds the listening socket on cfg.ListenPort, registers it with
// the Reactor, spawns the chat-room worker, optionally starts the
// /metrics HTTP server, and blocks inside the Reactor's dispatch loop.
// It returns only on a demultiplexer error; Shutdown does not make it
// return.
// Additional CLI ports beyond the first are logged and otherwise
// ignored.
func (s *Server) Run() error {
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true

	if len(s.cfg.ExtraPorts) > 0 {
		s.log.Warn("ignoring extra ports: only the first port is bound by the Reactor engine",
			zap.Ints("extra_ports", s.cfg.ExtraPorts))
	}

	fd, err := sockutil.Listen(s.cfg.ListenPort)
	if err != nil {
		return fmt.Errorf("server: listen on port %d: %w", s.cfg.ListenPort, err)
	}
	s.listenFD = fd
	s.log.Info("listening", zap.Int("port", s.cfg.ListenPort), zap.Int("fd", fd))

	listener := conn.New(fd, "0.0.0.0", true, conn.ModeChatRoom, s.reactor, s.queue, s.bufs, s.log, s.metrics)
	if err := s.reactor.Register(listener, api.EventAccept); err != nil {
		return fmt.Errorf("server: register listener: %w", err)
	}

	s.worker = chatroom.New(s.queue, fd, s.log, s.metrics, s.control)
	s.reactor.SetWorker(s.worker)

	s.control.Set("listen_port", s.cfg.ListenPort)
	s.control.Set("listen_fd", fd)
	s.control.RegisterDebugProbe("connections", func() any { return s.reactor.NumHandlers() })
	s.control.RegisterDebugProbe("queue_depth", func() any { return s.queue.Len() })

	if s.cfg.MetricsAddr != "" {
		s.startMetricsHTTP()
	}

	close(s.ready)
	return s.reactor.Run()
}

// startMetricsHTTP serves the Prometheus registry on cfg.MetricsAddr.
func (s *Server) startMetricsHTTP() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{}))
	s.httpSrv = &http.Server{
		Addr:              s.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		s.log.Info("metrics server listening", zap.String("addr", s.cfg.MetricsAddr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}

// Shutdown closes every registered connection, the queue, the
// demultiplexer and (if running) the metrics HTTP server. Closing the
// queue first lets the worker drain before its WaitGroup is joined.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	s.queue.Close()
	s.reactor.Shutdown()
	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

// GetControl exposes runtime stats and debug probes.
func (s *Server) GetControl() api.Control { return s.control }

// ListenFD returns the bound listening socket's fd, or -1 before Run.
func (s *Server) ListenFD() int {
	if !s.running {
		return -1
	}
	return s.listenFD
}

// Ready is closed once the listening socket is bound and registered
// with the Reactor. Tests that need a live TCP address (e.g. when
// ListenPort is 0 for an ephemeral port) wait on this before dialing.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// BoundPort returns the port the listening socket is actually bound to.
// Only meaningful after Ready() is closed.
func (s *Server) BoundPort() (int, error) {
	return sockutil.BoundPort(s.listenFD)
}
