// Package recorder durably appends measurement batches to a comma-delimited log
// and acknowledges them to the submitting monitor.
package recorder

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/hastyy/meterlog/internal/assert"
	"github.com/hastyy/meterlog/internal/measurement"
	"github.com/hastyy/meterlog/internal/protocol"
)

// Recorder appends batches to a single log file.
// The log is never truncated or rewritten; every record goes to the end of the file.
type Recorder struct {
	cfg Config

	// Serializes appends so the log has a single writer at a time.
	mu sync.Mutex
}

// New creates a Recorder for the configured log. Unset config values take their defaults.
// The log file is not touched until the first append.
func New(cfg Config) *Recorder {
	cfg = cfg.CombineWith(DefaultConfig)
	assert.NonZero(cfg.Path, "log path is required")
	assert.NonNil(cfg.OpenFile, "OpenFile is required")

	return &Recorder{cfg: cfg}
}

// LogPath returns the path of the log file.
func (r *Recorder) LogPath() string {
	return r.cfg.Path
}

// AppendBatch persists batch and then writes exactly one acknowledgment to w.
// If persisting fails, it returns *PersistenceError and w is never written to.
// If the acknowledgment fails, it returns *protocol.TransportError; the batch stays in the log.
func (r *Recorder) AppendBatch(w io.Writer, batch measurement.Batch) error {
	if err := r.Persist(batch); err != nil {
		return err
	}
	return r.Acknowledge(w)
}

// Persist appends every measurement of batch to the log, in order, one "key,value" line each,
// and syncs the file before returning. A log that does not exist yet is created,
// and its directory synced so the new entry survives a crash.
func (r *Recorder) Persist(batch measurement.Batch) (err error) {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, created, err := r.cfg.OpenFile(r.cfg.Path)
	if err != nil {
		return r.persistenceError("open", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = r.persistenceError("close", cerr)
		}
	}()

	w := measurement.NewWriter(f)
	if err := w.WriteBatch(batch); err != nil {
		return r.persistenceError("write", err)
	}
	if err := w.Flush(); err != nil {
		return r.persistenceError("write", err)
	}
	if err := f.Sync(); err != nil {
		return r.persistenceError("sync", err)
	}

	if created {
		if err := syncDir(filepath.Dir(r.cfg.Path)); err != nil {
			return r.persistenceError("sync directory of", err)
		}
	}

	return nil
}

// Acknowledge writes the acknowledgment token to w.
// A failure here does not roll back the batch that was already persisted.
func (r *Recorder) Acknowledge(w io.Writer) error {
	return protocol.WriteToken(w, protocol.TokenAck)
}

func (r *Recorder) persistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Path: r.cfg.Path, Op: op, Err: err}
}
