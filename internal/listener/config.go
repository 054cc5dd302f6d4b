package listener

import (
	"net"
	"net/netip"

	"github.com/hastyy/meterlog/internal/tcp"
)

type Config struct {
	// Listener params
	// The loopback address to bind to.
	Address netip.AddrPort

	// Config values
	// The function to create the listening socket. Takes in the Config.Address. It defaults to net.Listen.
	StartListener func(addr netip.AddrPort) (net.Listener, error)
	// Buffer sizes and deadlines for the accepted connection.
	Connection tcp.Config
}

// DefaultAddress is the rendezvous address used when none is configured.
var DefaultAddress = netip.MustParseAddrPort("127.0.0.1:5000")

// DefaultConfig specifies the default config values for a Listener.
var DefaultConfig = Config{
	Address: DefaultAddress,
	StartListener: func(addr netip.AddrPort) (net.Listener, error) {
		return net.Listen("tcp", addr.String())
	},
	Connection: tcp.DefaultConfig,
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
func (cfg Config) CombineWith(other Config) Config {
	var zero netip.AddrPort
	if cfg.Address == zero {
		cfg.Address = other.Address
	}
	if cfg.StartListener == nil {
		cfg.StartListener = other.StartListener
	}
	cfg.Connection = cfg.Connection.CombineWith(other.Connection)
	return cfg
}
