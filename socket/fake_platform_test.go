package socket

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type fakeDatagram struct {
	from Endpoint
	to   Endpoint
	data []byte
}

// fakePlatform records every call so tests can check acquire/release order.
// failOn names the call that should fail, e.g. "bind".
type fakePlatform struct {
	mu sync.Mutex

	calls  []string
	failOn string

	lastHandle handle
	live       map[handle]bool
	inits      int

	timeout time.Duration
	bcast   bool
	bound   Endpoint

	inbox []fakeDatagram
	sent  []fakeDatagram
}

var errFake = errors.New("fake failure")

func newFakePlatform() *fakePlatform {
	return &fakePlatform{live: make(map[handle]bool)}
}

func (f *fakePlatform) record(call string) error {
	f.calls = append(f.calls, call)
	if f.failOn == call {
		return errFake
	}
	return nil
}

func (f *fakePlatform) Calls() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.calls, ",")
}

func (f *fakePlatform) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Balanced reports whether every acquired resource was released again.
func (f *fakePlatform) Balanced() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inits == 0 && len(f.live) == 0
}

func (f *fakePlatform) Deliver(from Endpoint, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox = append(f.inbox, fakeDatagram{from: from, data: data})
}

func (f *fakePlatform) Sent() []fakeDatagram {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeDatagram(nil), f.sent...)
}

func (f *fakePlatform) initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("init"); err != nil {
		return err
	}
	f.inits++
	return nil
}

func (f *fakePlatform) teardown() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits--
	return f.record("teardown")
}

func (f *fakePlatform) createHandle() (handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create"); err != nil {
		return 0, err
	}
	f.lastHandle++
	f.live[f.lastHandle] = true
	return f.lastHandle, nil
}

func (f *fakePlatform) bind(h handle, local Endpoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("bind"); err != nil {
		return err
	}
	f.bound = local
	return nil
}

func (f *fakePlatform) setReceiveTimeout(h handle, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("timeout"); err != nil {
		return err
	}
	f.timeout = d
	return nil
}

func (f *fakePlatform) setBroadcast(h handle, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("broadcast"); err != nil {
		return err
	}
	f.bcast = enabled
	return nil
}

func (f *fakePlatform) sendTo(h handle, p []byte, dst Endpoint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("send"); err != nil {
		return 0, err
	}
	if !f.live[h] {
		return 0, errors.New("send on released handle")
	}
	cpy := make([]byte, len(p))
	copy(cpy, p)
	f.sent = append(f.sent, fakeDatagram{from: f.bound, to: dst, data: cpy})
	return len(p), nil
}

func (f *fakePlatform) receiveFrom(h handle, p []byte) (int, Endpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("receive"); err != nil {
		return 0, Endpoint{}, err
	}
	if len(f.inbox) == 0 {
		return 0, Endpoint{}, errReceiveTimeout
	}
	d := f.inbox[0]
	f.inbox = f.inbox[1:]
	n := copy(p, d.data)
	return n, d.from, nil
}

func (f *fakePlatform) release(h handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, h)
	return f.record("release")
}
