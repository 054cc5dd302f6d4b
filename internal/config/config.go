// Package config assembles the configuration of the meterlog binaries from a YAML file and defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hastyy/meterlog/internal/listener"
	"github.com/hastyy/meterlog/internal/logging"
	"github.com/hastyy/meterlog/internal/monitor"
	"github.com/hastyy/meterlog/internal/protocol"
	"github.com/hastyy/meterlog/internal/recorder"
	"github.com/hastyy/meterlog/internal/tcp"
	"github.com/hastyy/meterlog/internal/training"
	"github.com/hastyy/meterlog/internal/viewer"
)

type Config struct {
	Listener listener.Config
	Protocol protocol.Config
	Recorder recorder.Config
	Viewer   viewer.Config
	Logging  logging.Config
	Monitor  MonitorConfig
	Training training.Config
}

// MonitorConfig configures the monitor binary.
type MonitorConfig struct {
	Client monitor.Config
	// Time between two samples.
	Interval time.Duration
	// Maximum number of measurements per submitted batch.
	MaxBatch int
}

var DefaultMonitorConfig = MonitorConfig{
	Client:   monitor.DefaultConfig,
	Interval: time.Second,
	MaxBatch: 100,
}

func (cfg MonitorConfig) CombineWith(other MonitorConfig) MonitorConfig {
	cfg.Client = cfg.Client.CombineWith(other.Client)
	cfg.Client.StrictReadiness = cfg.Client.StrictReadiness || other.Client.StrictReadiness
	if cfg.Interval == 0 {
		cfg.Interval = other.Interval
	}
	if cfg.MaxBatch == 0 {
		cfg.MaxBatch = other.MaxBatch
	}
	return cfg
}

var DefaultConfig = Config{
	Listener: listener.DefaultConfig,
	Protocol: protocol.DefaultConfig,
	Recorder: recorder.DefaultConfig,
	Viewer:   viewer.DefaultConfig,
	Logging:  logging.DefaultConfig,
	Monitor:  DefaultMonitorConfig,
	Training: training.DefaultConfig,
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
func (cfg Config) CombineWith(other Config) Config {
	cfg.Listener = cfg.Listener.CombineWith(other.Listener)
	cfg.Protocol = cfg.Protocol.CombineWith(other.Protocol)
	cfg.Recorder = cfg.Recorder.CombineWith(other.Recorder)
	cfg.Viewer = cfg.Viewer.CombineWith(other.Viewer)
	cfg.Logging = cfg.Logging.CombineWith(other.Logging)
	cfg.Monitor = cfg.Monitor.CombineWith(other.Monitor)
	cfg.Training = cfg.Training.CombineWith(other.Training)
	return cfg
}

// file is the on-disk layout. Every key is optional.
//
//	listener:
//	  address: 127.0.0.1:5000
//	  read_timeout: 30s
//	  write_timeout: 5s
//	  max_batch_size: 10000
//	recorder:
//	  path: data.csv
//	viewer:
//	  address: 127.0.0.1:8000
//	  disabled: false
//	log:
//	  level: info
//	  format: json
//	monitor:
//	  interval: 1s
//	  max_batch: 100
//	  strict_readiness: false
//	training:
//	  model: yolo11m.pt
//	  data: dataset/data.yaml
//	  epochs: 100
//	  batch_size: 16
//	  image_size: 640
//	  project: runs/detect
//	  name: yolo_finetune_human
type file struct {
	Listener struct {
		Address      string        `yaml:"address"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		MaxBatchSize int           `yaml:"max_batch_size"`
	} `yaml:"listener"`
	Recorder struct {
		Path string `yaml:"path"`
	} `yaml:"recorder"`
	Viewer struct {
		Address  string `yaml:"address"`
		Disabled bool   `yaml:"disabled"`
	} `yaml:"viewer"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Monitor struct {
		Interval        time.Duration `yaml:"interval"`
		MaxBatch        int           `yaml:"max_batch"`
		StrictReadiness bool          `yaml:"strict_readiness"`
	} `yaml:"monitor"`
	Training struct {
		Model     string `yaml:"model"`
		Data      string `yaml:"data"`
		Epochs    int    `yaml:"epochs"`
		BatchSize int    `yaml:"batch_size"`
		ImageSize int    `yaml:"image_size"`
		Project   string `yaml:"project"`
		Name      string `yaml:"name"`
	} `yaml:"training"`
}

// Load reads the YAML file at path and fills everything it leaves unset with DefaultConfig.
// An empty path yields DefaultConfig. Unknown keys are rejected.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document and fills everything it leaves unset with DefaultConfig.
func Parse(data []byte) (Config, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}

	cfg, err := f.config()
	if err != nil {
		return Config{}, err
	}
	return cfg.CombineWith(DefaultConfig), nil
}

func (f file) config() (Config, error) {
	var cfg Config

	if f.Listener.Address != "" {
		addr, err := ParseAddrPort(f.Listener.Address)
		if err != nil {
			return Config{}, fmt.Errorf("listener address: %w", err)
		}
		cfg.Listener.Address = addr
		cfg.Monitor.Client.Address = addr
	}
	if f.Listener.ReadTimeout < 0 || f.Listener.WriteTimeout < 0 {
		return Config{}, errors.New("listener timeouts must not be negative")
	}
	if f.Listener.MaxBatchSize < 0 {
		return Config{}, fmt.Errorf("max batch size must not be negative, got %d", f.Listener.MaxBatchSize)
	}
	cfg.Listener.Connection = tcp.Config{
		ReadTimeout:  f.Listener.ReadTimeout,
		WriteTimeout: f.Listener.WriteTimeout,
	}
	cfg.Protocol.MaxBatchSize = f.Listener.MaxBatchSize

	cfg.Recorder.Path = f.Recorder.Path
	cfg.Viewer = viewer.Config{Address: f.Viewer.Address, Disabled: f.Viewer.Disabled}
	cfg.Logging = logging.Config{Level: f.Log.Level, Format: f.Log.Format}

	if f.Monitor.Interval < 0 || f.Monitor.MaxBatch < 0 {
		return Config{}, errors.New("monitor interval and max batch must not be negative")
	}
	cfg.Monitor.Interval = f.Monitor.Interval
	cfg.Monitor.MaxBatch = f.Monitor.MaxBatch
	cfg.Monitor.Client.StrictReadiness = f.Monitor.StrictReadiness

	cfg.Training = training.Config{
		Model:     f.Training.Model,
		Data:      f.Training.Data,
		Epochs:    f.Training.Epochs,
		BatchSize: f.Training.BatchSize,
		ImageSize: f.Training.ImageSize,
		Project:   f.Training.Project,
		Name:      f.Training.Name,
	}
	return cfg, nil
}
