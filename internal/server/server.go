// Package server runs the recorder process: the rendezvous with the monitor,
// the single control session and, unless disabled, the HTTP viewer.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hastyy/meterlog/internal/assert"
	"github.com/hastyy/meterlog/internal/handler"
	"github.com/hastyy/meterlog/internal/listener"
	"github.com/hastyy/meterlog/internal/logging"
	"github.com/hastyy/meterlog/internal/metrics"
	"github.com/hastyy/meterlog/internal/protocol"
	"github.com/hastyy/meterlog/internal/recorder"
	"github.com/hastyy/meterlog/internal/session"
	"github.com/hastyy/meterlog/internal/viewer"
)

var (
	ErrAlreadyStarted = errors.New("server already started")
	ErrAlreadyStopped = errors.New("server already stopped")
)

// serverState is a type that represents the state of the server.
// A server can be in one of the following states:
// - idle: the server hasn't been started or stopped yet
// - running: the server is bound and waiting for, or serving, its monitor
// - stopped: the server has been stopped
// A server will always be created in the idle state. The possible state transitions are:
// - idle -> running: after Start() binds the rendezvous address
// - running -> stopped: after Stop() is called
// - idle -> stopped: after Stop() is called without being started first
// A server that is stopped cannot be started (again).
type serverState int

const (
	idle serverState = iota
	running
	stopped
)

// Server serves exactly one monitor session over its lifetime.
type Server struct {
	cfg Config

	// Server state.
	state      serverState
	listener   *listener.Listener
	httpServer *http.Server
	viewerAddr net.Addr

	// Server dependencies.
	recorder *recorder.Recorder
	decoder  *protocol.BatchDecoder
	metrics  *metrics.Metrics

	// Server synchronization.
	mu     sync.Mutex
	ready  chan struct{}      // Closed once the rendezvous address is bound.
	cancel context.CancelFunc // Ends the session, or the wait for one.
	done   chan struct{}      // Closed when Start returns.
}

func New(cfg Config) *Server {
	// Guarantee dependencies are passed through correctly
	assert.NonNil(cfg.Registry, "Registry is required")
	assert.NonNil(cfg.Logger, "Logger is required")

	cfg = cfg.CombineWith(DefaultConfig)

	return &Server{
		cfg:      cfg,
		state:    idle,
		recorder: recorder.New(cfg.Recorder),
		decoder:  protocol.NewBatchDecoder(cfg.Protocol),
		metrics:  metrics.New(cfg.Registry),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start binds the rendezvous address, starts the viewer and blocks until the monitor session ends.
// It returns nil when the monitor closed the connection or the server was stopped, and the
// session's error otherwise. Bind failures are returned before any state changes, as *listener.BindError
// for the rendezvous address.
func (s *Server) Start() error {
	s.mu.Lock()

	switch s.state {
	case stopped:
		s.mu.Unlock()
		return ErrAlreadyStopped
	case running:
		s.mu.Unlock()
		return ErrAlreadyStarted
	}

	l := listener.New(s.cfg.Listener)
	if err := l.Start(); err != nil {
		s.mu.Unlock()
		return err
	}

	if !s.cfg.Viewer.Disabled {
		if err := s.startViewer(); err != nil {
			_ = l.Close()
			s.mu.Unlock()
			return err
		}
	}

	addr := l.Addr().String()
	ctx, cancel := context.WithCancel(context.Background())
	s.listener = l
	s.cancel = cancel
	s.state = running
	close(s.ready)
	s.mu.Unlock()

	defer close(s.done)
	defer cancel()
	return s.serve(ctx, addr)
}

func (s *Server) startViewer() error {
	ln, err := net.Listen("tcp", s.cfg.Viewer.Address)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", s.cfg.Viewer.Address, err)
	}

	logger := s.cfg.Logger.With("component", "viewer")
	store := viewer.NewStore(s.recorder.LogPath())
	s.httpServer = &http.Server{
		Handler:           viewer.New(store, s.cfg.Registry, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.viewerAddr = ln.Addr()

	logger.Info("viewer listening", "addr", ln.Addr().String())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("viewer stopped", "error", err)
		}
	}()
	return nil
}

func (s *Server) serve(ctx context.Context, addr string) error {
	logger := s.cfg.Logger.With("component", "server")
	logger.Info("waiting for monitor", "addr", addr, "log", s.recorder.LogPath())

	conn, err := s.listener.AcceptOne(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	h := handler.NewBatchHandler(s.decoder, s.recorder, s.metrics, s.cfg.Logger.With("component", "handler"))
	logger = logger.With("session_id", h.SessionID())

	if err := s.listener.AnnounceReady(conn); err != nil {
		_ = conn.Close()
		return err
	}
	logger.Info("monitor connected", "remote_addr", conn.RemoteAddr().String())

	s.metrics.SessionsActive.Inc()
	defer s.metrics.SessionsActive.Dec()

	err = session.Serve(ctx, conn, logging.Middleware(s.cfg.Logger.With("component", "session"), h))
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("monitor disconnected")
	return nil
}

// Ready is closed once the rendezvous address is bound and Addr can be used.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the rendezvous address, or nil if it is not bound.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ViewerAddr returns the viewer's address, or nil if the viewer is not running.
func (s *Server) ViewerAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewerAddr
}

// Stop ends the session, or the wait for one, and shuts the viewer down.
// If the server is not running, it will just set the state to stopped.
// If the context is done before Start returns, it will return the context error.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()

	if s.state == stopped {
		s.mu.Unlock()
		return ErrAlreadyStopped
	}

	isRunning := s.state == running
	s.state = stopped
	s.mu.Unlock()

	if !isRunning {
		return nil
	}

	s.cancel()
	err := s.listener.Close()
	if s.httpServer != nil {
		err = errors.Join(err, s.httpServer.Shutdown(ctx))
	}

	select {
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	case <-s.done:
		return err
	}
}
