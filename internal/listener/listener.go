// Package listener implements the one-time rendezvous between the recorder and its monitor.
package listener

import (
	"context"
	"net"
	"sync"

	"github.com/hastyy/meterlog/internal/assert"
	"github.com/hastyy/meterlog/internal/protocol"
	"github.com/hastyy/meterlog/internal/tcp"
)

// listenerState is a type that represents the state of the listener.
// A listener can be in one of the following states:
// - idle: Start() hasn't been called yet
// - listening: the socket is bound and waiting for its single peer
// - accepted: the peer was accepted and the listening socket is closed
// - closed: Close() was called, or the rendezvous failed
// A listener will always be created in the idle state. The possible state transitions are:
// - idle -> listening: Start() succeeded
// - listening -> accepted: AcceptOne() succeeded
// - listening -> closed: AcceptOne() failed or Close() was called
// - idle -> closed, accepted -> closed: Close() was called
// A listener serves a single peer for its entire lifetime and cannot be restarted.
type listenerState int

const (
	idle listenerState = iota
	listening
	accepted
	closed
)

// Listener binds a local address and accepts exactly one peer.
type Listener struct {
	cfg Config

	mu       sync.Mutex // Guards state and listener, so Close() can interrupt a blocked AcceptOne().
	state    listenerState
	listener net.Listener
}

// New creates a Listener in the idle state. Unset config values take their defaults.
func New(cfg Config) *Listener {
	cfg = cfg.CombineWith(DefaultConfig)
	assert.OK(cfg.Address.IsValid(), "invalid address: %s", cfg.Address)
	assert.NonNil(cfg.StartListener, "StartListener is required")

	return &Listener{
		cfg:   cfg,
		state: idle,
	}
}

// Start binds the configured address.
// It fails with *BindError if the address is already in use or inaccessible.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case listening, accepted:
		return ErrAlreadyStarted
	case closed:
		return ErrClosed
	}

	listener, err := l.cfg.StartListener(l.cfg.Address)
	if err != nil {
		return &BindError{Addr: l.cfg.Address, Err: err}
	}

	l.listener = listener
	l.state = listening
	return nil
}

// Addr returns the bound address, or nil if the listener is not listening.
// Useful when binding to port 0.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

// AcceptOne blocks until exactly one peer connects and returns its connection.
// The listening socket is closed as soon as the peer is accepted, so no second peer is ever queued.
// Calling AcceptOne again returns ErrAlreadyAccepted.
// Transport failures are returned as *AcceptError. Cancelling ctx closes the listening socket,
// which also surfaces as *AcceptError wrapping ctx.Err().
func (l *Listener) AcceptOne(ctx context.Context) (*tcp.Connection, error) {
	l.mu.Lock()
	switch l.state {
	case idle:
		l.mu.Unlock()
		return nil, ErrNotStarted
	case accepted:
		l.mu.Unlock()
		return nil, ErrAlreadyAccepted
	case closed:
		l.mu.Unlock()
		return nil, ErrClosed
	}
	listener := l.listener
	l.mu.Unlock()

	// Unblock Accept() if the context is cancelled while we wait.
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	conn, err := listener.Accept()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Either way this listener will not accept again.
	_ = listener.Close()
	l.listener = nil

	if err != nil {
		l.state = closed
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, &AcceptError{Err: err}
	}

	if l.state == closed {
		// Close() raced with a successful Accept().
		_ = conn.Close()
		return nil, &AcceptError{Err: ErrClosed}
	}

	l.state = accepted
	return tcp.NewConnection(conn, l.cfg.Connection), nil
}

// AnnounceReady writes the readiness token to conn so the peer knows it may start submitting batches.
// It is a single write with no retry; failures are returned as *protocol.TransportError.
func (l *Listener) AnnounceReady(conn *tcp.Connection) error {
	assert.NonNil(conn, "Connection is required")
	conn.ResetDeadlines()
	return protocol.WriteToken(conn, protocol.TokenReady)
}

// Close closes the listening socket if it is still open.
// It does not close a connection returned by AcceptOne.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == closed {
		return nil
	}
	l.state = closed

	if l.listener == nil {
		return nil
	}
	err := l.listener.Close()
	l.listener = nil
	return err
}
