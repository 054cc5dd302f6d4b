package monitor

import (
	"context"
	"net"
	"net/netip"
	"time"

	"gopkg.in/retry.v1"

	"github.com/hastyy/meterlog/internal/listener"
	"github.com/hastyy/meterlog/internal/tcp"
)

type Config struct {
	// Client params
	// The recorder's rendezvous address.
	Address netip.AddrPort
	// Fail the dial when the recorder greets with anything other than the readiness token.
	// By default a wrong greeting is only logged.
	StrictReadiness bool

	// Config values
	// Backoff between dial attempts. Dialing stops when the strategy is exhausted or the context is done.
	Retry retry.Strategy
	// The function used to open the connection. It defaults to (&net.Dialer{}).DialContext.
	Dial func(ctx context.Context, network, address string) (net.Conn, error)
	// Buffer sizes and deadlines for the connection.
	Connection tcp.Config
}

// DefaultRetry keeps dialing a recorder that is not up yet, backing off up to 5s between attempts.
var DefaultRetry = retry.Exponential{
	Initial:  100 * time.Millisecond,
	Factor:   1.5,
	MaxDelay: 5 * time.Second,
}

// DefaultConfig specifies the default config values for a Client.
var DefaultConfig = Config{
	Address:    listener.DefaultAddress,
	Retry:      DefaultRetry,
	Dial:       (&net.Dialer{}).DialContext,
	Connection: tcp.DefaultConfig,
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
// StrictReadiness is never filled in.
func (cfg Config) CombineWith(other Config) Config {
	var zero netip.AddrPort
	if cfg.Address == zero {
		cfg.Address = other.Address
	}
	if cfg.Retry == nil {
		cfg.Retry = other.Retry
	}
	if cfg.Dial == nil {
		cfg.Dial = other.Dial
	}
	cfg.Connection = cfg.Connection.CombineWith(other.Connection)
	return cfg
}
