// Package handler implements the batch exchange of the control channel:
// decode one batch, append it to the log, acknowledge it.
package handler

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hastyy/meterlog/internal/assert"
	"github.com/hastyy/meterlog/internal/logging"
	"github.com/hastyy/meterlog/internal/measurement"
	"github.com/hastyy/meterlog/internal/metrics"
	"github.com/hastyy/meterlog/internal/protocol"
	"github.com/hastyy/meterlog/internal/tcp"
)

type BatchDecoder interface {
	DecodeBatch(reader *bufio.Reader) (measurement.Batch, error)
}

type Recorder interface {
	Persist(batch measurement.Batch) error
	Acknowledge(w io.Writer) error
}

// BatchHandler serves a single monitor session. It implements session.Handler.
type BatchHandler struct {
	sessionID string
	decoder   BatchDecoder
	recorder  Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewBatchHandler creates a handler for one session, identified in logs by a fresh id.
func NewBatchHandler(decoder BatchDecoder, rec Recorder, m *metrics.Metrics, logger *slog.Logger) *BatchHandler {
	assert.NonNil(decoder, "BatchDecoder is required")
	assert.NonNil(rec, "Recorder is required")
	assert.NonNil(m, "Metrics is required")
	assert.NonNil(logger, "Logger is required")

	return &BatchHandler{
		sessionID: uuid.NewString(),
		decoder:   decoder,
		recorder:  rec,
		metrics:   m,
		logger:    logger,
	}
}

func (h *BatchHandler) SessionID() string {
	return h.sessionID
}

// Handle runs one exchange. It returns:
//   - io.EOF if the monitor closed the connection before sending another batch
//   - a protocol.Error for a malformed batch
//   - a *recorder.PersistenceError if the batch could not be appended
//   - a *protocol.TransportError for read or acknowledgment failures
//
// Nothing is written to conn unless the batch was appended.
func (h *BatchHandler) Handle(ctx context.Context, conn *tcp.Connection) error {
	logging.Record(ctx, slog.String("session_id", h.sessionID))

	batch, err := h.decoder.DecodeBatch(conn.BufferedReader())
	if err != nil {
		return h.decodeFailure(err)
	}
	logging.Record(ctx, slog.Int("measurements", len(batch)))

	start := time.Now()
	if err := h.recorder.Persist(batch); err != nil {
		h.metrics.ObserveFailure(metrics.ReasonPersistence)
		return err
	}
	elapsed := time.Since(start)
	h.metrics.ObserveAppend(len(batch), elapsed)
	logging.Record(ctx, slog.Duration("append_duration", elapsed))

	if err := h.recorder.Acknowledge(conn); err != nil {
		h.metrics.ObserveFailure(metrics.ReasonTransport)
		return err
	}
	h.metrics.AcksSent.Inc()
	return nil
}

func (h *BatchHandler) decodeFailure(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if perr, ok := protocol.IsProtocolError(err); ok {
		h.logger.Debug("rejected batch", "session_id", h.sessionID, "code", perr.Code)
		h.metrics.ObserveFailure(metrics.ReasonProtocol)
		return perr
	}
	h.metrics.ObserveFailure(metrics.ReasonTransport)
	return &protocol.TransportError{Op: "read batch", Err: err}
}
