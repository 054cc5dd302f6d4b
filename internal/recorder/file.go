package recorder

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

const filePermissions = 0o644

// File is the subset of *os.File the recorder writes through.
type File interface {
	io.Writer
	// Sync commits written data to stable storage.
	Sync() error
	Close() error
}

// OpenFunc opens the log at path for appending.
// created reports whether the file did not exist before the call.
type OpenFunc func(path string) (f File, created bool, err error)

// OpenAppend opens path for appending, creating it if it does not exist yet.
func OpenAppend(path string) (File, bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, filePermissions)
	if err == nil {
		return dataFile{f}, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	// O_EXCL so a file created by someone else in between is reported instead of silently shared.
	f, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_EXCL, filePermissions)
	if err != nil {
		return nil, false, err
	}
	return dataFile{f}, true, nil
}

// dataFile syncs file data without forcing a metadata flush where the platform allows it.
type dataFile struct {
	*os.File
}

func (f dataFile) Sync() error {
	return datasync(f.File)
}

// syncDir syncs a directory to ensure a newly created entry is persisted.
func syncDir(dirPath string) error {
	dir, err := os.Open(dirPath)
	if err != nil {
		return err
	}
	defer func() { _ = dir.Close() }()

	return dir.Sync()
}
