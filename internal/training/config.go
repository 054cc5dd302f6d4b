package training

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Config describes one fine-tuning run.
type Config struct {
	// Pretrained weights to start from.
	Model string
	// Dataset descriptor.
	Data      string
	Epochs    int
	BatchSize int
	ImageSize int
	// Output directory. Runs are written to Project/Name.
	Project string
	Name    string
}

// DefaultConfig specifies the default training run.
var DefaultConfig = Config{
	Model:     "yolo11m.pt",
	Data:      "dataset/data.yaml",
	Epochs:    100,
	BatchSize: 16,
	ImageSize: 640,
	Project:   "runs/detect",
	Name:      "yolo_finetune_human",
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
func (cfg Config) CombineWith(other Config) Config {
	if cfg.Model == "" {
		cfg.Model = other.Model
	}
	if cfg.Data == "" {
		cfg.Data = other.Data
	}
	if cfg.Epochs == 0 {
		cfg.Epochs = other.Epochs
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = other.BatchSize
	}
	if cfg.ImageSize == 0 {
		cfg.ImageSize = other.ImageSize
	}
	if cfg.Project == "" {
		cfg.Project = other.Project
	}
	if cfg.Name == "" {
		cfg.Name = other.Name
	}
	return cfg
}

// Validate reports every invalid value at once.
func (cfg Config) Validate() error {
	var errs []error
	if cfg.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if cfg.Data == "" {
		errs = append(errs, errors.New("data is required"))
	}
	if cfg.Epochs <= 0 {
		errs = append(errs, fmt.Errorf("epochs must be positive, got %d", cfg.Epochs))
	}
	if cfg.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize))
	}
	if cfg.ImageSize <= 0 {
		errs = append(errs, fmt.Errorf("image size must be positive, got %d", cfg.ImageSize))
	}
	if cfg.Project == "" {
		errs = append(errs, errors.New("project is required"))
	}
	if cfg.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	return errors.Join(errs...)
}

// WeightsDir is where the engine leaves the trained weights.
func (cfg Config) WeightsDir() string {
	return filepath.Join(cfg.Project, cfg.Name, "weights")
}
