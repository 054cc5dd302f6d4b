package viewer

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/hastyy/meterlog/internal/measurement"
	"github.com/hastyy/meterlog/internal/metrics"
	"github.com/hastyy/meterlog/internal/recorder"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func appendBatch(t *testing.T, path string, batch measurement.Batch) {
	t.Helper()
	require.NoError(t, recorder.New(recorder.Config{Path: path}).Persist(batch))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func newViewer(t *testing.T) (http.Handler, string, *metrics.Metrics) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	return New(NewStore(path), reg, discardLogger), path, m
}

func TestStore_MissingLogIsEmpty(t *testing.T) {
	require := require.New(t)

	snap, err := NewStore(filepath.Join(t.TempDir(), "data.csv")).Snapshot()
	require.NoError(err)
	require.Empty(snap.Points)
	require.True(snap.LastUpdated.IsZero())
}

func TestStore_ReloadsAfterAppend(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "data.csv")
	store := NewStore(path)

	appendBatch(t, path, measurement.Batch{measurement.M(1, 10), measurement.M(2, 20)})
	snap, err := store.Snapshot()
	require.NoError(err)
	require.Equal(measurement.Batch{measurement.M(1, 10), measurement.M(2, 20)}, snap.Points)
	require.False(snap.LastUpdated.IsZero())

	again, err := store.Snapshot()
	require.NoError(err)
	require.Equal(snap, again)

	appendBatch(t, path, measurement.Batch{measurement.M(3, 30)})
	snap, err = store.Snapshot()
	require.NoError(err)
	require.Equal(measurement.Batch{measurement.M(1, 10), measurement.M(2, 20), measurement.M(3, 30)}, snap.Points)
}

func TestStore_IgnoresUnterminatedRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    measurement.Batch
	}{
		{name: "truncated value", content: "1,10\n2,20", want: measurement.Batch{measurement.M(1, 10)}},
		{name: "truncated key", content: "1,10\n2", want: measurement.Batch{measurement.M(1, 10)}},
		{name: "only a partial record", content: "1,1", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			path := filepath.Join(t.TempDir(), "data.csv")
			require.NoError(os.WriteFile(path, []byte(tt.content), 0o644))
			store := NewStore(path)

			snap, err := store.Snapshot()
			require.NoError(err)
			require.Equal(tt.want, snap.Points)

			// Once the record is complete it shows up, even if the modification time did not move.
			info, err := os.Stat(path)
			require.NoError(err)
			f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
			require.NoError(err)
			_, err = f.WriteString("48\n")
			require.NoError(err)
			require.NoError(f.Close())
			require.NoError(os.Chtimes(path, info.ModTime(), info.ModTime()))

			snap, err = store.Snapshot()
			require.NoError(err)
			require.Len(snap.Points, len(tt.want)+1)
		})
	}
}

func TestStore_MalformedLog(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(os.WriteFile(path, []byte("1,10\nnot,a number\n"), 0o644))

	_, err := NewStore(path).Snapshot()
	require.ErrorContains(err, "read log")
}

func TestData(t *testing.T) {
	require := require.New(t)

	h, path, _ := newViewer(t)
	appendBatch(t, path, measurement.Batch{measurement.M(1, 10), measurement.M(2, 20)})
	appendBatch(t, path, measurement.Batch{measurement.M(3, 30)})

	rec := get(t, h, "/data")
	require.Equal(http.StatusOK, rec.Code)
	require.Equal("application/json", rec.Header().Get("Content-Type"))

	var body dataResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal([]point{{1, 10}, {2, 20}, {3, 30}}, body.Points)
	require.NotNil(body.LastUpdated)
}

func TestData_MissingLog(t *testing.T) {
	require := require.New(t)

	h, _, _ := newViewer(t)

	rec := get(t, h, "/data")
	require.Equal(http.StatusOK, rec.Code)
	require.JSONEq(`{"points":[],"last_updated":null}`, rec.Body.String())
}

func TestStats(t *testing.T) {
	require := require.New(t)

	h, path, _ := newViewer(t)
	appendBatch(t, path, measurement.Batch{measurement.M(1, 10), measurement.M(2, 20), measurement.M(3, 30)})

	rec := get(t, h, "/stats")
	require.Equal(http.StatusOK, rec.Code)

	var body statsResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(3, body.PointCount)
	require.NotNil(body.LastUpdated)
}

func TestStats_MalformedLog(t *testing.T) {
	require := require.New(t)

	h, path, _ := newViewer(t)
	require.NoError(os.WriteFile(path, []byte("garbage\n"), 0o644))

	rec := get(t, h, "/stats")
	require.Equal(http.StatusInternalServerError, rec.Code)
	require.JSONEq(`{"error":"cannot read log"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	require := require.New(t)

	h, _, m := newViewer(t)
	m.ObserveFailure(metrics.ReasonProtocol)

	rec := get(t, h, "/metrics")
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), `meterlog_append_failures_total{reason="protocol"} 1`)
}

func TestRoutes_OnlyGet(t *testing.T) {
	require := require.New(t)

	h, _, _ := newViewer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/data", nil))
	require.Equal(http.StatusMethodNotAllowed, rec.Code)

	require.Equal(http.StatusNotFound, get(t, h, "/unknown").Code)
}
