// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Logger returns a debug-level logger that writes through t.Log, so output only shows for failing tests.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(&testWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct {
	mu sync.Mutex
	t  *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// LogPath returns the path of a log file that does not exist yet, inside a directory removed after the test.
func LogPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data.csv")
}

// ReadLog returns the content of the log at path, or "" if it does not exist.
func ReadLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		t.Fatalf("read log %s: %v", path, err)
	}
	return string(content)
}
