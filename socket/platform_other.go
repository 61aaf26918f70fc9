//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || windows)

package socket

import (
	"runtime"
	"time"

	"github.com/pkg/errors"
)

type unsupportedPlatform struct{}

func init() {
	newPlatform = func() platform { return unsupportedPlatform{} }
}

var errUnsupported = errors.New("datagram sockets not supported on " + runtime.GOOS)

func (unsupportedPlatform) initialize() error { return errUnsupported }
func (unsupportedPlatform) teardown() error { return nil }
func (unsupportedPlatform) createHandle() (handle, error) { return 0, errUnsupported }
func (unsupportedPlatform) bind(handle, Endpoint) error { return errUnsupported }
func (unsupportedPlatform) setReceiveTimeout(handle, time.Duration) error { return errUnsupported }
func (unsupportedPlatform) setBroadcast(handle, bool) error { return errUnsupported }
func (unsupportedPlatform) release(handle) error { return nil }

func (unsupportedPlatform) sendTo(handle, []byte, Endpoint) (int, error) {
	return 0, errUnsupported
}

func (unsupportedPlatform) receiveFrom(handle, []byte) (int, Endpoint, error) {
	return 0, Endpoint{}, errUnsupported
}
