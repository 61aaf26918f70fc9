//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package socket

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type posixPlatform struct{}

func init() {
	newPlatform = func() platform { return posixPlatform{} }
}

// POSIX sockets need no process-wide setup.
func (posixPlatform) initialize() error { return nil }

func (posixPlatform) teardown() error { return nil }

func (posixPlatform) createHandle() (handle, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
	if err != nil {
		return 0, errors.Wrap(err, "socket")
	}
	unix.CloseOnExec(fd)
	return handle(fd), nil
}

func (posixPlatform) bind(h handle, local Endpoint) error {
	sa := &unix.SockaddrInet4{Port: local.Port(), Addr: local.as4()}
	return errors.Wrap(unix.Bind(int(h), sa), "bind")
}

func (posixPlatform) setReceiveTimeout(h handle, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if tv.Sec == 0 && tv.Usec == 0 {
		// A zero timeval would mean "block forever".
		tv.Usec = 1
	}
	return errors.Wrap(unix.SetsockoptTimeval(int(h), unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv), "setsockopt SO_RCVTIMEO")
}

func (posixPlatform) setBroadcast(h handle, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	return errors.Wrap(unix.SetsockoptInt(int(h), unix.SOL_SOCKET, unix.SO_BROADCAST, v), "setsockopt SO_BROADCAST")
}

func (posixPlatform) sendTo(h handle, p []byte, dst Endpoint) (int, error) {
	sa := &unix.SockaddrInet4{Port: dst.Port(), Addr: dst.as4()}
	for {
		n, err := unix.SendmsgN(int(h), p, nil, sa, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, errors.Wrap(err, "sendmsg")
		}
		return n, nil
	}
}

func (posixPlatform) receiveFrom(h handle, p []byte) (int, Endpoint, error) {
	for {
		n, from, err := unix.Recvfrom(int(h), p, 0)
		switch err {
		case nil:
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, Endpoint{}, errReceiveTimeout
		default:
			return 0, Endpoint{}, errors.Wrap(err, "recvfrom")
		}
		var ep Endpoint
		if sa, ok := from.(*unix.SockaddrInet4); ok {
			ep = endpointFrom4(sa.Addr, sa.Port)
		}
		if n > len(p) {
			n = len(p)
		}
		return n, ep, nil
	}
}

func (posixPlatform) release(h handle) error {
	return errors.Wrap(unix.Close(int(h)), "close")
}
