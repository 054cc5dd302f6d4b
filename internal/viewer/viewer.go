// Package viewer serves the recorded log and the recorder's metrics over HTTP.
package viewer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hastyy/meterlog/internal/assert"
)

type Config struct {
	// Address the HTTP server listens on.
	Address  string
	Disabled bool
}

// DefaultConfig specifies the default config values for the viewer.
var DefaultConfig = Config{
	Address: "127.0.0.1:8000",
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
func (cfg Config) CombineWith(other Config) Config {
	if cfg.Address == "" {
		cfg.Address = other.Address
	}
	cfg.Disabled = cfg.Disabled || other.Disabled
	return cfg
}

type point struct {
	Key   int64 `json:"key"`
	Value int64 `json:"value"`
}

type dataResponse struct {
	Points      []point    `json:"points"`
	LastUpdated *time.Time `json:"last_updated"`
}

type statsResponse struct {
	PointCount  int        `json:"point_count"`
	LastUpdated *time.Time `json:"last_updated"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type viewer struct {
	store  *Store
	logger *slog.Logger
}

// New returns the viewer's routes:
//
//	GET /data     every point in the log, in order
//	GET /stats    number of points and time of the last update
//	GET /metrics  Prometheus exposition of gatherer
func New(store *Store, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	assert.NonNil(store, "Store is required")
	assert.NonNil(gatherer, "Gatherer is required")
	assert.NonNil(logger, "Logger is required")

	v := &viewer{store: store, logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/data", v.handleData).Methods(http.MethodGet)
	router.HandleFunc("/stats", v.handleStats).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return router
}

func (v *viewer) handleData(w http.ResponseWriter, r *http.Request) {
	snap, ok := v.snapshot(w)
	if !ok {
		return
	}

	points := make([]point, len(snap.Points))
	for i, m := range snap.Points {
		points[i] = point{Key: m.Key, Value: m.Value}
	}
	v.writeJSON(w, http.StatusOK, dataResponse{Points: points, LastUpdated: lastUpdated(snap)})
}

func (v *viewer) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := v.snapshot(w)
	if !ok {
		return
	}
	v.writeJSON(w, http.StatusOK, statsResponse{PointCount: len(snap.Points), LastUpdated: lastUpdated(snap)})
}

func (v *viewer) snapshot(w http.ResponseWriter) (Snapshot, bool) {
	snap, err := v.store.Snapshot()
	if err != nil {
		v.logger.Error("cannot read log", "error", err)
		v.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "cannot read log"})
		return Snapshot{}, false
	}
	return snap, true
}

func (v *viewer) writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		v.logger.Warn("cannot write response", "error", err)
	}
}

func lastUpdated(snap Snapshot) *time.Time {
	if snap.LastUpdated.IsZero() {
		return nil
	}
	t := snap.LastUpdated.UTC()
	return &t
}
