package socket

import (
	"time"

	"github.com/pkg/errors"
)

// handle is the OS socket identifier: a file descriptor on POSIX,
// a SOCKET on Windows.
type handle uintptr

// platform hides the OS sockets API. One implementation is compiled in
// per GOOS, see platform_*.go. Tests swap in a fake.
type platform interface {
	// initialize and teardown bracket one open session.
	initialize() error
	teardown() error

	createHandle() (handle, error)
	bind(h handle, local Endpoint) error
	// setReceiveTimeout is only called with d > 0.
	setReceiveTimeout(h handle, d time.Duration) error
	setBroadcast(h handle, enabled bool) error
	sendTo(h handle, p []byte, dst Endpoint) (int, error)
	// receiveFrom returns errReceiveTimeout when the receive timeout elapsed.
	receiveFrom(h handle, p []byte) (int, Endpoint, error)
	release(h handle) error
}

var errReceiveTimeout = errors.New("no data within receive timeout")

// newPlatform is set by the build-tagged platform files.
var newPlatform func() platform
