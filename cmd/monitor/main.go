package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hastyy/meterlog/internal/config"
	"github.com/hastyy/meterlog/internal/logging"
	"github.com/hastyy/meterlog/internal/monitor"
)

func main() {
	// Define command-line flags
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "recorder address in host:port format (default 127.0.0.1:5000)")
	input := flag.String("input", "-", `file of "key,value" lines to submit, "-" for stdin`)
	interval := flag.Duration("interval", 0, "time between two samples (default 1s)")
	maxBatch := flag.Int("max-batch", 0, "maximum number of measurements per batch (default 100)")
	strict := flag.Bool("strict", false, "fail if the recorder does not greet with the readiness token")
	logLevel := flag.String("log.level", "", "minimum log level: debug, info, warn or error")

	// Parse flags
	flag.Parse()

	loaded, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	var cfg config.Config
	if *addr != "" {
		addrPort, err := config.ParseAddrPort(*addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: unable to parse address + port: %v\n", err)
			os.Exit(2)
		}
		cfg.Monitor.Client.Address = addrPort
	}
	cfg.Monitor.Interval = *interval
	cfg.Monitor.MaxBatch = *maxBatch
	cfg.Monitor.Client.StrictReadiness = *strict
	cfg.Logging.Level = *logLevel
	cfg = cfg.CombineWith(loaded)

	if cfg.Monitor.MaxBatch > cfg.Protocol.MaxBatchSize {
		fmt.Fprintf(os.Stderr, "Error: max-batch must be at most %d, got %d\n", cfg.Protocol.MaxBatchSize, cfg.Monitor.MaxBatch)
		os.Exit(2)
	}

	logger, err := logging.New(os.Stderr, cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	var r io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			logger.Error("unable to open input", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := run(ctx, cfg.Monitor, r, logger); err != nil {
		logger.Error("monitor stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("monitor stopped")
}

func run(ctx context.Context, cfg config.MonitorConfig, r io.Reader, logger *slog.Logger) error {
	client, err := monitor.Dial(ctx, cfg.Client, logger.With("component", "monitor"))
	if err != nil {
		return err
	}
	logger.Info("connected to recorder", "addr", cfg.Client.Address.String())

	start := time.Now()
	err = monitor.Run(ctx, client, monitor.NewReaderSampler(r, cfg.MaxBatch), cfg.Interval, logger.With("component", "sampler"))
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("session ended", "duration", time.Since(start))
	return err
}
