//go:build windows

package socket

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// Winsock values not exported by x/sys/windows on every version.
const (
	soRcvTimeo   = 0x1006
	soBroadcast  = 0x0020
	wsaETimedOut = windows.Errno(10060)
	wsaEMsgSize  = windows.Errno(10040)
	winsock22    = uint32(0x0202)
)

type winsockPlatform struct{}

func init() {
	newPlatform = func() platform { return winsockPlatform{} }
}

// initialize performs the WSAStartup handshake. Winsock reference-counts
// startup calls, so one per open session pairs with teardown.
func (winsockPlatform) initialize() error {
	var data windows.WSAData
	return errors.Wrap(windows.WSAStartup(winsock22, &data), "WSAStartup")
}

func (winsockPlatform) teardown() error {
	return errors.Wrap(windows.WSACleanup(), "WSACleanup")
}

func (winsockPlatform) createHandle() (handle, error) {
	s, err := windows.Socket(windows.AF_INET, windows.SOCK_DGRAM, windows.IPPROTO_UDP)
	if err != nil {
		return 0, errors.Wrap(err, "socket")
	}
	return handle(s), nil
}

func (winsockPlatform) bind(h handle, local Endpoint) error {
	sa := &windows.SockaddrInet4{Port: local.Port(), Addr: local.as4()}
	return errors.Wrap(windows.Bind(windows.Handle(h), sa), "bind")
}

// setReceiveTimeout uses a DWORD of milliseconds. Sub-millisecond values
// round up so they never turn into an infinite wait.
func (winsockPlatform) setReceiveTimeout(h handle, d time.Duration) error {
	ms := (d + time.Millisecond - 1) / time.Millisecond
	return errors.Wrap(windows.SetsockoptInt(windows.Handle(h), windows.SOL_SOCKET, soRcvTimeo, int(ms)), "setsockopt SO_RCVTIMEO")
}

func (winsockPlatform) setBroadcast(h handle, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	return errors.Wrap(windows.SetsockoptInt(windows.Handle(h), windows.SOL_SOCKET, soBroadcast, v), "setsockopt SO_BROADCAST")
}

func (winsockPlatform) sendTo(h handle, p []byte, dst Endpoint) (int, error) {
	sa := &windows.SockaddrInet4{Port: dst.Port(), Addr: dst.as4()}
	buf := windows.WSABuf{Len: uint32(len(p))}
	if len(p) > 0 {
		buf.Buf = &p[0]
	}
	var sent uint32
	if err := windows.WSASendto(windows.Handle(h), &buf, 1, &sent, 0, sa, nil, nil); err != nil {
		return 0, errors.Wrap(err, "WSASendto")
	}
	return int(sent), nil
}

func (winsockPlatform) receiveFrom(h handle, p []byte) (int, Endpoint, error) {
	n, from, err := windows.Recvfrom(windows.Handle(h), p, 0)
	switch err {
	case nil:
	case wsaEMsgSize:
		// Winsock fills the buffer and reports the rest as discarded.
		return len(p), Endpoint{}, nil
	case wsaETimedOut:
		return 0, Endpoint{}, errReceiveTimeout
	default:
		return 0, Endpoint{}, errors.Wrap(err, "recvfrom")
	}
	var ep Endpoint
	if sa, ok := from.(*windows.SockaddrInet4); ok {
		ep = endpointFrom4(sa.Addr, sa.Port)
	}
	return n, ep, nil
}

func (winsockPlatform) release(h handle) error {
	return errors.Wrap(windows.Closesocket(windows.Handle(h)), "closesocket")
}
