// Package training drives the fine-tuning of the detection model whose output feeds the monitor.
// The training itself is done by an external engine; this package only prepares and checks its runs.
package training

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hastyy/meterlog/internal/assert"
)

var (
	ErrModelNotFound = errors.New("model not found")
	// ErrNoArtifact is returned when the engine exited cleanly but left no weights behind.
	ErrNoArtifact = errors.New("training produced no weights")
)

// Artifact locates the weights of a finished run.
type Artifact struct {
	WeightsDir string
	// Weights of the best epoch.
	Best string
	// Weights of the final epoch.
	Last string
}

type Engine interface {
	Train(ctx context.Context, cfg Config) (Artifact, error)
}

// RunFunc runs name with args, streaming its output to stdout and stderr.
type RunFunc func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error

// DefaultCommand is the engine's command-line entry point.
const DefaultCommand = "yolo"

// CLIEngine trains through the engine's command-line interface.
type CLIEngine struct {
	// Defaults to DefaultCommand.
	Command string
	// Destinations of the engine's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
	// Defaults to running the command as a child process.
	Run RunFunc

	Logger *slog.Logger
}

func runCommand(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Args builds the engine's arguments for cfg.
func Args(cfg Config) []string {
	return []string{
		"detect", "train",
		"model=" + cfg.Model,
		"data=" + cfg.Data,
		"epochs=" + strconv.Itoa(cfg.Epochs),
		"batch=" + strconv.Itoa(cfg.BatchSize),
		"imgsz=" + strconv.Itoa(cfg.ImageSize),
		"project=" + cfg.Project,
		"name=" + cfg.Name,
	}
}

// Train runs the engine to completion. Unset config values take their defaults.
// The model file must exist; the engine is never started otherwise.
func (e *CLIEngine) Train(ctx context.Context, cfg Config) (Artifact, error) {
	assert.NonNil(e.Logger, "Logger is required")

	cfg = cfg.CombineWith(DefaultConfig)
	if err := cfg.Validate(); err != nil {
		return Artifact{}, fmt.Errorf("invalid training config: %w", err)
	}
	if _, err := os.Stat(cfg.Model); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Artifact{}, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.Model)
		}
		return Artifact{}, fmt.Errorf("stat model: %w", err)
	}

	command, run := e.Command, e.Run
	if command == "" {
		command = DefaultCommand
	}
	if run == nil {
		run = runCommand
	}
	stdout, stderr := e.Stdout, e.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	logger := e.Logger.With("model", cfg.Model, "data", cfg.Data, "run", cfg.Name)
	logger.Info("training started", "epochs", cfg.Epochs, "batch_size", cfg.BatchSize, "image_size", cfg.ImageSize)

	start := time.Now()
	if err := run(ctx, command, Args(cfg), stdout, stderr); err != nil {
		return Artifact{}, fmt.Errorf("run %s: %w", command, err)
	}

	artifact := Artifact{
		WeightsDir: cfg.WeightsDir(),
		Best:       filepath.Join(cfg.WeightsDir(), "best.pt"),
		Last:       filepath.Join(cfg.WeightsDir(), "last.pt"),
	}
	if _, err := os.Stat(artifact.Best); err != nil {
		return Artifact{}, fmt.Errorf("%w: %w", ErrNoArtifact, err)
	}

	logger.Info("training finished", "weights", artifact.WeightsDir, "duration", time.Since(start))
	return artifact, nil
}
