package server

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hastyy/meterlog/internal/listener"
	"github.com/hastyy/meterlog/internal/protocol"
	"github.com/hastyy/meterlog/internal/recorder"
	"github.com/hastyy/meterlog/internal/viewer"
)

type Config struct {
	// Dependencies
	// Registry for the recorder's metrics. It is also what the viewer exposes on /metrics.
	Registry *prometheus.Registry
	// Base logger. Components log through it with their own "component" attribute.
	Logger *slog.Logger

	// Config values
	Listener listener.Config
	Protocol protocol.Config
	Recorder recorder.Config
	Viewer   viewer.Config
}

// DefaultConfig specifies the default config values for a Server.
var DefaultConfig = Config{
	Listener: listener.DefaultConfig,
	Protocol: protocol.DefaultConfig,
	Recorder: recorder.DefaultConfig,
	Viewer:   viewer.DefaultConfig,
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
func (cfg Config) CombineWith(other Config) Config {
	if cfg.Registry == nil {
		cfg.Registry = other.Registry
	}
	if cfg.Logger == nil {
		cfg.Logger = other.Logger
	}
	cfg.Listener = cfg.Listener.CombineWith(other.Listener)
	cfg.Protocol = cfg.Protocol.CombineWith(other.Protocol)
	cfg.Recorder = cfg.Recorder.CombineWith(other.Recorder)
	cfg.Viewer = cfg.Viewer.CombineWith(other.Viewer)
	return cfg
}
