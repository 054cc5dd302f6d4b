package viewer

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/hastyy/meterlog/internal/measurement"
)

// Snapshot is the content of the log at some point in time.
type Snapshot struct {
	Points measurement.Batch
	// Modification time of the log. Zero if the log does not exist yet.
	LastUpdated time.Time
}

// Store keeps the log in memory and re-reads it only when its size or modification time changed.
// The log is only ever appended to, so either of them moving is enough to notice new records.
type Store struct {
	path string

	mu      sync.Mutex
	size    int64
	modTime time.Time
	current Snapshot
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Snapshot returns the current content of the log. A missing log is an empty snapshot.
func (s *Store) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.size, s.modTime, s.current = 0, time.Time{}, Snapshot{}
		return s.current, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("stat log: %w", err)
	}

	if info.Size() == s.size && info.ModTime().Equal(s.modTime) {
		return s.current, nil
	}

	points, size, err := s.load()
	if err != nil {
		return Snapshot{}, err
	}
	s.size, s.modTime = size, info.ModTime()
	s.current = Snapshot{Points: points, LastUpdated: info.ModTime()}
	return s.current, nil
}

// load parses the complete records of the log and returns how many bytes they span.
// A record still being appended has no trailing newline yet and is left for a later load.
func (s *Store) load() (measurement.Batch, int64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, 0, fmt.Errorf("open log: %w", err)
	}
	data = data[:bytes.LastIndexByte(data, '\n')+1]

	points, err := measurement.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("read log: %w", err)
	}
	return points, int64(len(data)), nil
}
