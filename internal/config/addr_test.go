package config

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAddrPort(t *testing.T) {
	tests := []struct {
		addr    string
		want    netip.AddrPort
		wantErr string
	}{
		{addr: "127.0.0.1:5000", want: netip.MustParseAddrPort("127.0.0.1:5000")},
		{addr: "localhost:5000", want: netip.MustParseAddrPort("127.0.0.1:5000")},
		{addr: ":5000", want: netip.MustParseAddrPort("0.0.0.0:5000")},
		{addr: "127.0.0.1", wantErr: "invalid address format"},
		{addr: "127.0.0.1:", wantErr: "invalid address format"},
		{addr: "127.0.0.1:70000", wantErr: "invalid port"},
		{addr: "example.com:5000", wantErr: "invalid IP address"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			require := require.New(t)

			got, err := ParseAddrPort(tt.addr)
			if tt.wantErr != "" {
				require.ErrorContains(err, tt.wantErr)
				return
			}
			require.NoError(err)
			require.Equal(tt.want, got)
		})
	}
}
