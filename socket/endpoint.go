package socket

import (
	"net"
	"net/netip"
	"strconv"

	"github.com/pkg/errors"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// Endpoint is an IPv4 address and UDP port. The zero value is not valid.
type Endpoint struct {
	addr netip.Addr
	port uint16
}

var loopback = netip.AddrFrom4([4]byte{127, 0, 0, 1})

// ParseEndpoint validates ip as dotted IPv4 text and port as 1-65535.
func ParseEndpoint(ip string, port int) (Endpoint, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return Endpoint{}, newError(KindInvalidAddress, "parse", err, "invalid IP "+strconv.Quote(ip))
	}
	if !addr.Is4() {
		return Endpoint{}, newError(KindInvalidAddress, "parse", nil, "not an IPv4 address: "+strconv.Quote(ip))
	}
	if port < MinPort || port > MaxPort {
		return Endpoint{}, newError(KindInvalidPort, "parse", nil, "invalid port "+strconv.Itoa(port))
	}
	return Endpoint{addr: addr, port: uint16(port)}, nil
}

// EndpointFromAddr converts a *net.UDPAddr (or any net.Addr printing as ip:port)
// into an Endpoint.
func EndpointFromAddr(a net.Addr) (Endpoint, error) {
	if a == nil {
		return Endpoint{}, newError(KindInvalidAddress, "convert", nil, "nil address")
	}
	if u, ok := a.(*net.UDPAddr); ok {
		ip := u.IP.To4()
		if ip == nil {
			return Endpoint{}, newError(KindInvalidAddress, "convert", nil, "not an IPv4 address: "+u.String())
		}
		return ParseEndpoint(ip.String(), u.Port)
	}
	ap, err := netip.ParseAddrPort(a.String())
	if err != nil {
		return Endpoint{}, newError(KindInvalidAddress, "convert", errors.WithStack(err), "")
	}
	return ParseEndpoint(ap.Addr().Unmap().String(), int(ap.Port()))
}

func endpointFrom4(ip [4]byte, port int) Endpoint {
	return Endpoint{addr: netip.AddrFrom4(ip), port: uint16(port)}
}

// IP returns the address in dotted form.
func (e Endpoint) IP() string {
	if !e.addr.IsValid() {
		return ""
	}
	return e.addr.String()
}

func (e Endpoint) Port() int { return int(e.port) }

func (e Endpoint) Addr() netip.Addr { return e.addr }

func (e Endpoint) IsValid() bool {
	return e.addr.Is4() && e.port >= MinPort
}

func (e Endpoint) String() string {
	if !e.addr.IsValid() {
		return ":" + strconv.Itoa(int(e.port))
	}
	return netip.AddrPortFrom(e.addr, e.port).String()
}

func (e Endpoint) UDPAddr() *net.UDPAddr {
	return net.UDPAddrFromAddrPort(netip.AddrPortFrom(e.addr, e.port))
}

func (e Endpoint) as4() [4]byte {
	return e.addr.As4()
}
