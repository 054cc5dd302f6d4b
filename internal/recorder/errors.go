package recorder

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when asked to persist a batch with no measurements.
var ErrEmptyBatch = errors.New("empty batch")

// PersistenceError is an I/O failure while appending a batch.
// When it is returned, an unknown prefix of the batch may already be in the log.
// No acknowledgment is sent, and the caller should not resubmit blindly.
type PersistenceError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("unable to %s log %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
