// Package socket is a small blocking IPv4 UDP socket with the same behaviour
// on POSIX systems and Windows.
//
// A Socket is configured with SetLocalEndpoint and/or SetPeerEndpoint, opened
// as a Receiver (bound to the local endpoint) or SenderOnly (unbound), and then
// used with ReadData and SendData. Broadcast is always enabled on open.
//
//	s := socket.NewSocket()
//	defer s.Close()
//	if err := s.SetLocalEndpoint("0.0.0.0", 5000); err != nil { ... }
//	if err := s.Open(socket.Receiver, 100*time.Millisecond); err != nil { ... }
//	n, from, err := s.ReadData(buf)
//
// A Socket is not safe for concurrent use. In particular Close must not be
// called while another goroutine is blocked in ReadData.
package socket

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Role selects whether Open binds the socket.
type Role uint8

const (
	// Receiver binds to the local endpoint and can both send and receive.
	Receiver Role = iota + 1
	// SenderOnly is not bound and is used to transmit.
	SenderOnly
)

func (r Role) String() string {
	switch r {
	case Receiver:
		return "receiver"
	case SenderOnly:
		return "sender-only"
	}
	return "unknown"
}

// MaxDatagramSize is the largest UDP payload over IPv4.
const MaxDatagramSize = 65507

// Socket owns one OS datagram handle plus a local and a default peer endpoint.
// The zero value is a closed socket with no endpoints configured.
type Socket struct {
	// Logger receives diagnostics for every failure. Defaults to the logrus
	// standard logger with component=UdpSocket.
	Logger logrus.FieldLogger

	sys platform

	local    Endpoint
	localSet bool
	peer     Endpoint
	peerSet  bool

	lastSender Endpoint
	hasSender  bool

	sess *session
}

// session is the state of one Open..Close cycle. The finalizer on it releases
// the handle if an open Socket is dropped without Close.
type session struct {
	sys     platform
	h       handle
	role    Role
	timeout time.Duration
	peer    Endpoint
	peerSet bool
	log     logrus.FieldLogger
}

// NewSocket returns a closed socket with loopback endpoints and no ports set.
func NewSocket() *Socket {
	return &Socket{
		local: Endpoint{addr: loopback},
		peer:  Endpoint{addr: loopback},
	}
}

func newSocketWithPlatform(sys platform, log logrus.FieldLogger) *Socket {
	s := NewSocket()
	s.sys = sys
	s.Logger = log
	return s
}

func (s *Socket) log() logrus.FieldLogger {
	if s.Logger == nil {
		s.Logger = logrus.StandardLogger().WithField("component", "UdpSocket")
	}
	return s.Logger
}

func (s *Socket) platform() platform {
	if s.sys == nil {
		s.sys = newPlatform()
	}
	return s.sys
}

func (s *Socket) fail(log logrus.FieldLogger, err *Error) error {
	log.WithError(err).Error("UdpSocket " + err.Op + " failed")
	return err
}

// SetLocalEndpoint sets the address Open binds to in Receiver role.
// On error the previous endpoint is kept. An open socket is not affected
// until the next Open.
func (s *Socket) SetLocalEndpoint(ip string, port int) error {
	ep, err := ParseEndpoint(ip, port)
	if err != nil {
		return s.fail(s.log().WithField("ip", ip).WithField("port", port), withOp(err, "set local endpoint"))
	}
	s.local, s.localSet = ep, true
	return nil
}

// SetLocal is SetLocalEndpoint for an already built Endpoint.
func (s *Socket) SetLocal(ep Endpoint) error {
	if err := checkEndpoint(ep, "set local endpoint"); err != nil {
		return s.fail(s.log().WithField("endpoint", ep.String()), err)
	}
	s.local, s.localSet = ep, true
	return nil
}

// SetPeerEndpoint sets the default destination of SendData.
// On error the previous endpoint is kept. An open socket keeps the peer it
// was opened with until the next Open.
func (s *Socket) SetPeerEndpoint(ip string, port int) error {
	ep, err := ParseEndpoint(ip, port)
	if err != nil {
		return s.fail(s.log().WithField("ip", ip).WithField("port", port), withOp(err, "set peer endpoint"))
	}
	s.peer, s.peerSet = ep, true
	return nil
}

// SetPeer is SetPeerEndpoint for an already built Endpoint.
func (s *Socket) SetPeer(ep Endpoint) error {
	if err := checkEndpoint(ep, "set peer endpoint"); err != nil {
		return s.fail(s.log().WithField("endpoint", ep.String()), err)
	}
	s.peer, s.peerSet = ep, true
	return nil
}

func (s *Socket) LocalEndpoint() (Endpoint, bool) { return s.local, s.localSet }

func (s *Socket) PeerEndpoint() (Endpoint, bool) { return s.peer, s.peerSet }

// Open creates the OS socket. Receiver binds it to the local endpoint.
// receiveTimeout bounds every ReadData, 0 blocks forever.
//
// Opening an open socket fails with KindAlreadyOpen. On any failure everything
// acquired so far is released and the socket stays closed.
func (s *Socket) Open(role Role, receiveTimeout time.Duration) error {
	const op = "open"
	log := s.log().WithField("role", role.String())

	if s.sess != nil {
		return s.fail(log, newError(KindAlreadyOpen, op, nil, ""))
	}
	switch role {
	case Receiver:
		if !s.localSet {
			return s.fail(log, newError(KindAddressNotConfigured, op, nil, "local endpoint is not set"))
		}
		log = log.WithField("local", s.local.String())
	case SenderOnly:
	default:
		return s.fail(log, newError(KindOptionConfigFailed, op, nil, "unknown role"))
	}
	if receiveTimeout < 0 {
		return s.fail(log, newError(KindOptionConfigFailed, op, nil, "negative receive timeout "+receiveTimeout.String()))
	}

	sys := s.platform()
	if err := sys.initialize(); err != nil {
		return s.fail(log, newError(KindPlatformInitFailed, op, err, ""))
	}

	h, err := sys.createHandle()
	if err != nil {
		unwind(sys, nil, log)
		return s.fail(log, newError(KindHandleCreationFailed, op, err, ""))
	}

	if role == Receiver {
		if err := sys.bind(h, s.local); err != nil {
			unwind(sys, &h, log)
			return s.fail(log, newError(KindBindFailed, op, err, ""))
		}
	}

	if receiveTimeout > 0 {
		if err := sys.setReceiveTimeout(h, receiveTimeout); err != nil {
			unwind(sys, &h, log)
			return s.fail(log, newError(KindOptionConfigFailed, op, err, "receive timeout"))
		}
	}

	if err := sys.setBroadcast(h, true); err != nil {
		unwind(sys, &h, log)
		return s.fail(log, newError(KindOptionConfigFailed, op, err, "broadcast"))
	}

	sess := &session{
		sys:     sys,
		h:       h,
		role:    role,
		timeout: receiveTimeout,
		peer:    s.peer,
		peerSet: s.peerSet,
		log:     s.log(),
	}
	runtime.SetFinalizer(sess, (*session).close)
	s.sess = sess
	log.WithField("timeout", receiveTimeout).Debug("UdpSocket open")
	return nil
}

// unwind releases what a failed Open acquired, newest first.
func unwind(sys platform, h *handle, log logrus.FieldLogger) {
	if h != nil {
		if err := sys.release(*h); err != nil {
			log.WithError(err).Warn("UdpSocket release failed")
		}
	}
	if err := sys.teardown(); err != nil {
		log.WithError(err).Warn("UdpSocket platform teardown failed")
	}
}

func (ss *session) close() {
	unwind(ss.sys, &ss.h, ss.log)
}

// ReadData blocks for one datagram and copies at most len(buf) bytes of it
// into buf. Longer datagrams are truncated. A zero length datagram returns 0
// and no error.
//
// When the receive timeout elapses the error has KindTimeout and
// Timeout() == true. Callers polling in a loop should treat that as "no data".
func (s *Socket) ReadData(buf []byte) (int, Endpoint, error) {
	const op = "read"
	if s.sess == nil {
		return 0, Endpoint{}, s.fail(s.log(), newError(KindNotOpen, op, nil, ""))
	}
	n, from, err := s.sess.sys.receiveFrom(s.sess.h, buf)
	if err == errReceiveTimeout {
		return 0, Endpoint{}, newError(KindTimeout, op, nil, "")
	}
	if err != nil {
		return 0, Endpoint{}, s.fail(s.log(), newError(KindReceiveFailed, op, err, ""))
	}
	if from.IsValid() {
		s.lastSender, s.hasSender = from, true
	}
	return n, from, nil
}

// Receive reads one datagram into a freshly allocated buffer.
func (s *Socket) Receive() (*Datagram, error) {
	buf := make([]byte, MaxDatagramSize)
	n, from, err := s.ReadData(buf)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	copy(data, buf[:n])
	return &Datagram{Origin: from, Data: data}, nil
}

// LastSender is the origin of the most recent datagram returned by ReadData.
func (s *Socket) LastSender() (Endpoint, bool) {
	return s.lastSender, s.hasSender
}

// SendData sends data as one datagram to the peer endpoint the socket was
// opened with. It returns the byte count reported by the OS.
func (s *Socket) SendData(data []byte) (int, error) {
	const op = "send"
	if s.sess == nil {
		return 0, s.fail(s.log(), newError(KindNotOpen, op, nil, ""))
	}
	if !s.sess.peerSet {
		return 0, s.fail(s.log(), newError(KindAddressNotConfigured, op, nil, "peer endpoint is not set"))
	}
	return s.send(op, data, s.sess.peer)
}

// SendDataTo sends data as one datagram to dst instead of the peer endpoint.
func (s *Socket) SendDataTo(data []byte, dst Endpoint) (int, error) {
	const op = "send"
	if s.sess == nil {
		return 0, s.fail(s.log(), newError(KindNotOpen, op, nil, ""))
	}
	if err := checkEndpoint(dst, op); err != nil {
		return 0, s.fail(s.log().WithField("dst", dst.String()), err)
	}
	return s.send(op, data, dst)
}

func (s *Socket) send(op string, data []byte, dst Endpoint) (int, error) {
	n, err := s.sess.sys.sendTo(s.sess.h, data, dst)
	if err != nil {
		return 0, s.fail(s.log().WithField("dst", dst.String()).WithField("size", len(data)),
			newError(KindSendFailed, op, err, ""))
	}
	return n, nil
}

func (s *Socket) IsOpen() bool { return s.sess != nil }

// Role is the role of the current session, 0 when closed.
func (s *Socket) Role() Role {
	if s.sess == nil {
		return 0
	}
	return s.sess.role
}

// ReceiveTimeout is the timeout of the current session.
func (s *Socket) ReceiveTimeout() time.Duration {
	if s.sess == nil {
		return 0
	}
	return s.sess.timeout
}

// Close releases the OS socket. It is a no-op on a closed socket and always
// returns nil; release errors are only logged.
func (s *Socket) Close() error {
	sess := s.sess
	if sess == nil {
		return nil
	}
	s.sess = nil
	runtime.SetFinalizer(sess, nil)
	sess.close()
	s.log().Debug("UdpSocket closed")
	return nil
}

func checkEndpoint(ep Endpoint, op string) *Error {
	if !ep.addr.Is4() {
		return newError(KindInvalidAddress, op, nil, "endpoint has no IPv4 address")
	}
	if ep.port < MinPort {
		return newError(KindInvalidPort, op, nil, "endpoint has no port")
	}
	return nil
}

func withOp(err error, op string) *Error {
	e, ok := err.(*Error)
	if !ok {
		return newError(KindUnknown, op, err, "")
	}
	c := *e
	c.Op = op
	return &c
}
