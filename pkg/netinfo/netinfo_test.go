package netinfo

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	t.Parallel()

	mac, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	loopback := nic{
		flags: net.FlagUp | net.FlagLoopback,
		addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)}},
	}
	v6only := nic{
		flags:    net.FlagUp,
		hardware: mac,
		addrs:    []net.Addr{&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)}},
	}
	down := nic{
		flags: 0,
		addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("10.9.9.9"), Mask: net.CIDRMask(8, 32)}},
	}
	eth := nic{
		flags:    net.FlagUp,
		hardware: mac,
		addrs: []net.Addr{
			&net.IPNet{IP: net.ParseIP("fe80::2"), Mask: net.CIDRMask(64, 128)},
			&net.IPNet{IP: net.ParseIP("10.0.0.7"), Mask: net.CIDRMask(24, 32)},
		},
	}
	tun := nic{
		flags: net.FlagUp | net.FlagPointToPoint,
		addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("100.64.0.1")}},
	}

	tests := []struct {
		name string
		nics []nic
		want Server
	}{
		{name: "no interfaces", want: Server{Address: Unknown, Hardware: Unknown}},
		{name: "loopback only", nics: []nic{loopback}, want: Server{Address: Unknown, Hardware: Unknown}},
		{name: "first external ipv4", nics: []nic{loopback, down, v6only, eth}, want: Server{Address: "10.0.0.7", Hardware: "aa:bb:cc:dd:ee:ff"}},
		{name: "no hardware address", nics: []nic{tun, eth}, want: Server{Address: "100.64.0.1", Hardware: Unknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pick(tt.nics))
		})
	}
}

func TestLookupIsStable(t *testing.T) {
	t.Parallel()

	first := Lookup()
	assert.NotEmpty(t, first.Address)
	assert.NotEmpty(t, first.Hardware)
	assert.Equal(t, first, Lookup())
}
