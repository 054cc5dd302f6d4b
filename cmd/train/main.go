package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hastyy/meterlog/internal/config"
	"github.com/hastyy/meterlog/internal/logging"
	"github.com/hastyy/meterlog/internal/training"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	command := flag.String("command", training.DefaultCommand, "the training engine's command-line entry point")

	var override training.Config
	flag.StringVar(&override.Model, "model", "", "pretrained weights to start from (default yolo11m.pt)")
	flag.StringVar(&override.Data, "data", "", "dataset descriptor (default dataset/data.yaml)")
	flag.IntVar(&override.Epochs, "epochs", 0, "number of epochs (default 100)")
	flag.IntVar(&override.BatchSize, "batch", 0, "batch size (default 16)")
	flag.IntVar(&override.ImageSize, "imgsz", 0, "input image size (default 640)")
	flag.StringVar(&override.Project, "project", "", "output directory (default runs/detect)")
	flag.StringVar(&override.Name, "name", "", "run name (default yolo_finetune_human)")
	logLevel := flag.String("log.level", "", "minimum log level: debug, info, warn or error")

	flag.Parse()

	loaded, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(os.Stderr, logging.Config{Level: *logLevel}.CombineWith(loaded.Logging))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg := override.CombineWith(loaded.Training)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid training config", "error", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine := &training.CLIEngine{
		Command: *command,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  logger.With("component", "training"),
	}
	artifact, err := engine.Train(ctx, cfg)
	if err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(artifact.Best)
}
