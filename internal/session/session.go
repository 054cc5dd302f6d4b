// Package session runs the request/acknowledge loop on an accepted monitor connection.
package session

import (
	"context"
	"errors"
	"io"

	"github.com/hastyy/meterlog/internal/assert"
	"github.com/hastyy/meterlog/internal/tcp"
)

// Handler should specify the application layer logic to run in each iteration of
// the read/write loop of a connection.
type Handler interface {
	// Handle is called for each request/acknowledge exchange on the connection.
	// It returns io.EOF when the peer closed the connection between exchanges,
	// and any other error when the session must end.
	Handle(ctx context.Context, conn *tcp.Connection) error
}

// HandlerFunc can wrap a function with the Handle format and turn it into a Handler.
type HandlerFunc func(ctx context.Context, conn *tcp.Connection) error

// Handle implements the Handler interface.
func (h HandlerFunc) Handle(ctx context.Context, conn *tcp.Connection) error {
	return h(ctx, conn)
}

// Serve runs h on conn until the peer closes the connection or an exchange fails.
// A peer closing between exchanges is the normal end of a session and returns nil.
// Any other failure is returned as is. The connection is always closed when Serve returns.
//
// There is no read deadline unless conn was configured with one: a silent peer blocks Serve
// until ctx is cancelled, which closes the connection.
func Serve(ctx context.Context, conn *tcp.Connection, h Handler) error {
	assert.NonNil(conn, "Connection is required")
	assert.NonNil(h, "Handler is required")

	// Close the connection when the handler returns, or earlier if ctx is cancelled
	// while the handler is blocked on a read.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Reset the deadlines of the connection for each exchange
		conn.ResetDeadlines()

		err := h.Handle(ctx, conn)
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return nil
		case ctx.Err() != nil:
			// The read failed because we closed the connection on cancellation.
			return ctx.Err()
		default:
			return err
		}
	}
}
