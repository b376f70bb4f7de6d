// Package netinfo reports which server instance handled a request.
// Lookups are best-effort; missing values are reported as Unknown.
package netinfo

import (
	"net"
	"sync"
)

// Unknown is reported when an address or hardware id cannot be determined.
const Unknown = "unknown"

// Server identifies a host by its first external IPv4 address and the
// hardware address of the same interface.
type Server struct {
	Address  string
	Hardware string
}

type nic struct {
	flags    net.Flags
	hardware net.HardwareAddr
	addrs    []net.Addr
}

var (
	once   sync.Once
	cached Server
)

// Lookup inspects the network interfaces once and caches the result.
func Lookup() Server {
	once.Do(func() {
		cached = pick(interfaces())
	})
	return cached
}

func interfaces() []nic {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	out := make([]nic, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		out = append(out, nic{flags: iface.Flags, hardware: iface.HardwareAddr, addrs: addrs})
	}
	return out
}

func pick(nics []nic) Server {
	for _, n := range nics {
		if n.flags&net.FlagLoopback != 0 || n.flags&net.FlagUp == 0 {
			continue
		}
		for _, a := range n.addrs {
			var ip net.IP
			switch v := a.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() {
				hw := n.hardware.String()
				if hw == "" {
					hw = Unknown
				}
				return Server{Address: ip4.String(), Hardware: hw}
			}
		}
	}
	return Server{Address: Unknown, Hardware: Unknown}
}
