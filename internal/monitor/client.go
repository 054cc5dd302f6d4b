// Package monitor is the submitting side of the control channel.
// A Client connects to the recorder, submits batches one at a time and waits for each acknowledgment.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/retry.v1"

	"github.com/hastyy/meterlog/internal/assert"
	"github.com/hastyy/meterlog/internal/measurement"
	"github.com/hastyy/meterlog/internal/protocol"
	"github.com/hastyy/meterlog/internal/tcp"
)

// Client holds the single connection to the recorder.
// A Client has at most one batch in flight; concurrent Submit calls are serialized.
type Client struct {
	conn    *tcp.Connection
	encoder *protocol.BatchEncoder
	logger  *slog.Logger

	mu sync.Mutex
	// Set once the connection is no longer usable. Every later Submit returns it.
	err error
}

// Dial connects to the recorder, retrying with backoff while the recorder is not listening yet,
// and then consumes the readiness token. Unset config values take their defaults.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	assert.NonNil(logger, "Logger is required")
	cfg = cfg.CombineWith(DefaultConfig)
	addr := cfg.Address.String()

	var lastErr error
	for a := retry.StartWithCancel(cfg.Retry, nil, ctx.Done()); a.Next(); {
		netConn, err := cfg.Dial(ctx, "tcp", addr)
		if err == nil {
			conn := tcp.NewConnection(netConn, cfg.Connection)
			if err := awaitReadiness(ctx, conn, cfg.StrictReadiness, logger); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return &Client{
				conn:    conn,
				encoder: protocol.NewBatchEncoder(),
				logger:  logger,
			}, nil
		}
		lastErr = err
		logger.Warn("cannot reach recorder", "addr", addr, "error", err)
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, errors.Join(ctx.Err(), lastErr))
	}
	return nil, fmt.Errorf("dial %s: %w", addr, lastErr)
}

func awaitReadiness(ctx context.Context, conn *tcp.Connection, strict bool, logger *slog.Logger) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	conn.ResetDeadlines()
	err := protocol.ReadToken(conn, protocol.TokenReady)

	var unexpected *protocol.UnexpectedTokenError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &unexpected):
		logger.Warn("recorder sent an unexpected greeting", "want", unexpected.Want, "got", unexpected.Got)
		if strict {
			return fmt.Errorf("%w: %w", ErrUnexpectedReadiness, err)
		}
		return nil
	case ctx.Err() != nil:
		return errors.Join(ctx.Err(), err)
	default:
		return err
	}
}

// Submit sends batch and blocks until the recorder acknowledges it.
// A batch is confirmed durable only when Submit returns nil. Any other outcome
// (a wrong reply, a closed or broken connection) is ErrNotAcknowledged, and
// the Client is unusable afterwards.
func (c *Client) Submit(batch measurement.Batch) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}

	c.conn.ResetDeadlines()
	if err := c.send(batch); err != nil {
		c.err = fmt.Errorf("%w: %w", ErrNotAcknowledged, err)
		return c.err
	}
	if err := protocol.ReadToken(c.conn, protocol.TokenAck); err != nil {
		c.err = fmt.Errorf("%w: %w", ErrNotAcknowledged, err)
		return c.err
	}
	return nil
}

func (c *Client) send(batch measurement.Batch) error {
	if err := c.encoder.EncodeBatch(c.conn, batch); err != nil {
		return &protocol.TransportError{Op: "write batch", Err: err}
	}
	if err := c.conn.Flush(); err != nil {
		return &protocol.TransportError{Op: "write batch", Err: err}
	}
	return nil
}

// Close ends the session. The recorder sees a clean close between batches.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if errors.Is(c.err, ErrClosed) {
		return nil
	}
	c.err = ErrClosed
	return c.conn.Close()
}
