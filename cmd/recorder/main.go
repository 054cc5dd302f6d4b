package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hastyy/meterlog/internal/config"
	"github.com/hastyy/meterlog/internal/logging"
	"github.com/hastyy/meterlog/internal/server"
)

func main() {
	cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Create the base logger
	logger, err := logging.New(os.Stdout, cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(server.Config{
		Registry: reg,
		Logger:   logger,
		Listener: cfg.Listener,
		Protocol: cfg.Protocol,
		Recorder: cfg.Recorder,
		Viewer:   cfg.Viewer,
	})

	// When the session ends Start returns an error (can be nil) through this channel
	serr := make(chan error, 1)
	go func() { serr <- srv.Start() }()

	// When this context is cancelled, we will try to gracefully stop the server
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	// Wait for either the session to end, or the context to be cancelled
	select {
	case err = <-serr:
	case <-ctx.Done():
	}

	// Make a best effort to shut down cleanly.
	// If the session already ended, Stop only shuts the viewer down.
	sdctx, sdcancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer sdcancel()
	if err = errors.Join(err, srv.Stop(sdctx)); err != nil {
		logger.Error("recorder stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("recorder stopped")
}

func parseConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	var configPath string
	fs.StringVar(&configPath, "config", "", "path to a YAML config file")

	var addr string
	fs.StringVar(&addr, "listener.addr", "", "rendezvous address in host:port format (default 127.0.0.1:5000)")

	var logPath string
	fs.StringVar(&logPath, "recorder.path", "", "path of the measurement log (default data.csv)")

	var maxBatchSize int
	fs.IntVar(&maxBatchSize, "protocol.maxBatchSize", 0, "maximum number of measurements per batch (default 10000)")

	var viewerAddr string
	fs.StringVar(&viewerAddr, "viewer.addr", "", "HTTP address of the viewer (default 127.0.0.1:8000)")

	var noViewer bool
	fs.BoolVar(&noViewer, "viewer.disabled", false, "do not serve the viewer")

	var logLevel string
	fs.StringVar(&logLevel, "log.level", "", "minimum log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	var cfg config.Config
	if addr != "" {
		addrPort, err := config.ParseAddrPort(addr)
		if err != nil {
			return config.Config{}, fmt.Errorf("unable to parse address + port: %w", err)
		}
		cfg.Listener.Address = addrPort
	}
	cfg.Recorder.Path = logPath
	cfg.Protocol.MaxBatchSize = maxBatchSize
	cfg.Viewer.Address = viewerAddr
	cfg.Viewer.Disabled = noViewer
	cfg.Logging.Level = logLevel

	// Flags win over the file, the file wins over the defaults
	return cfg.CombineWith(loaded), nil
}
