package monitor

import "errors"

var (
	// ErrNotAcknowledged is returned by Submit when the recorder did not answer with the acknowledgment token.
	// The batch may or may not be in the log.
	ErrNotAcknowledged = errors.New("batch not acknowledged")
	// ErrUnexpectedReadiness is returned by Dial in strict mode when the recorder greets with something other than the readiness token.
	ErrUnexpectedReadiness = errors.New("unexpected readiness token")
	// ErrEmptyBatch is returned by Submit for a batch with no measurements. Nothing is sent.
	ErrEmptyBatch = errors.New("empty batch")
	ErrClosed     = errors.New("client closed")
)
