// Package logging builds the process logger and the per-exchange wide event.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hastyy/meterlog/internal/session"
	"github.com/hastyy/meterlog/internal/tcp"
)

type Config struct {
	// Minimum level: debug, info, warn or error. Defaults to info.
	Level string
	// Output format: json or text. Defaults to json.
	Format string
}

// DefaultConfig specifies the default config values for the logger.
var DefaultConfig = Config{
	Level:  "info",
	Format: "json",
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
func (cfg Config) CombineWith(other Config) Config {
	if cfg.Level == "" {
		cfg.Level = other.Level
	}
	if cfg.Format == "" {
		cfg.Format = other.Format
	}
	return cfg
}

// New creates the base logger writing to w.
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	cfg = cfg.CombineWith(DefaultConfig)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
}

type contextKey string

const wideEventKey = contextKey("wideEvent")

type wideEvent struct {
	attrs []slog.Attr
}

func newWideEvent() *wideEvent {
	return &wideEvent{
		attrs: make([]slog.Attr, 0),
	}
}

func (event *wideEvent) Record(attr ...slog.Attr) {
	event.attrs = append(event.attrs, attr...)
}

func (event *wideEvent) Attrs() []slog.Attr {
	return event.attrs
}

// Middleware logs one line per exchange handled by h, carrying every attribute
// recorded with Record while the exchange was handled.
func Middleware(logger *slog.Logger, h session.Handler) session.Handler {
	return session.HandlerFunc(func(ctx context.Context, c *tcp.Connection) error {
		event := newWideEvent()
		ctx = context.WithValue(ctx, wideEventKey, event)
		err := h.Handle(ctx, c)
		switch {
		case err == nil:
			logger.LogAttrs(ctx, slog.LevelInfo, "batch appended", event.Attrs()...)
		case errors.Is(err, io.EOF):
			logger.LogAttrs(ctx, slog.LevelInfo, "peer closed connection", event.Attrs()...)
		default:
			logger.LogAttrs(ctx, slog.LevelError, "exchange failed", append(event.Attrs(), slog.Any("error", err))...)
		}
		return err
	})
}

// Record adds attributes to the wide event of the current exchange.
// It is a no-op outside of Middleware.
func Record(ctx context.Context, attr ...slog.Attr) {
	event, ok := ctx.Value(wideEventKey).(*wideEvent)
	if !ok {
		return
	}

	event.Record(attr...)
}
