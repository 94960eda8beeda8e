package share

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"scratchview/internal/logx"
)

// LinkScheme prefixes the share links printed by a host.
const LinkScheme = "scratchview://"

// Link formats the address peers use to join a host.
func Link(host string, port int) string {
	return LinkScheme + net.JoinHostPort(host, strconv.Itoa(port))
}

// ParseLink extracts host:port from a share link. A bare host:port is
// accepted as well.
func ParseLink(link string) (string, error) {
	addr := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(link), LinkScheme), "/")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid share link %q: %w", link, err)
	}
	if host == "" {
		return "", fmt.Errorf("invalid share link %q: missing host", link)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return "", fmt.Errorf("invalid share link %q: bad port", link)
	}
	return addr, nil
}

// OutgoingIP finds the local address other machines on the LAN should use
// to reach this one.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return firstIPv4().String()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 returns the first IPv4 address of an interface that is up and
// not loopback, falling back to 127.0.0.1.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	logx.Logger().Debug("no LAN interface found, using loopback")
	return net.IPv4(127, 0, 0, 1)
}
