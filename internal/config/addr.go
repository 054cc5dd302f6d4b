package config

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// ParseAddrPort parses a host:port address. An empty host means every interface,
// and "localhost" is taken as 127.0.0.1.
func ParseAddrPort(addr string) (netip.AddrPort, error) {
	host, portStr, found := strings.Cut(addr, ":")
	if !found || portStr == "" {
		return netip.AddrPort{}, fmt.Errorf("invalid address format: %s", addr)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid port: %w", err)
	}

	if host == "" {
		return netip.AddrPortFrom(netip.IPv4Unspecified(), uint16(port)), nil
	}
	if host == "localhost" {
		host = "127.0.0.1"
	}

	ip, err := netip.ParseAddr(host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid IP address: %w", err)
	}
	return netip.AddrPortFrom(ip, uint16(port)), nil
}
