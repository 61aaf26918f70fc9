package socket

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a socket operation did not happen.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidAddress
	KindInvalidPort
	KindAddressNotConfigured
	KindPlatformInitFailed
	KindHandleCreationFailed
	KindBindFailed
	KindOptionConfigFailed
	KindNotOpen
	KindAlreadyOpen
	KindTimeout
	KindReceiveFailed
	KindSendFailed
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindInvalidAddress:       "invalid address",
	KindInvalidPort:          "invalid port",
	KindAddressNotConfigured: "address not configured",
	KindPlatformInitFailed:   "platform init failed",
	KindHandleCreationFailed: "handle creation failed",
	KindBindFailed:           "bind failed",
	KindOptionConfigFailed:   "option config failed",
	KindNotOpen:              "socket not open",
	KindAlreadyOpen:          "socket already open",
	KindTimeout:              "receive timeout",
	KindReceiveFailed:        "receive failed",
	KindSendFailed:           "send failed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is returned by every fallible Socket operation.
// It implements net.Error so a receive timeout can be told apart from a hard failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels for errors.Is. Matching is done on Kind only.
var (
	ErrInvalidAddress       = &Error{Kind: KindInvalidAddress}
	ErrInvalidPort          = &Error{Kind: KindInvalidPort}
	ErrAddressNotConfigured = &Error{Kind: KindAddressNotConfigured}
	ErrPlatformInitFailed   = &Error{Kind: KindPlatformInitFailed}
	ErrHandleCreationFailed = &Error{Kind: KindHandleCreationFailed}
	ErrBindFailed           = &Error{Kind: KindBindFailed}
	ErrOptionConfigFailed   = &Error{Kind: KindOptionConfigFailed}
	ErrNotOpen              = &Error{Kind: KindNotOpen}
	ErrAlreadyOpen          = &Error{Kind: KindAlreadyOpen}
	ErrTimeout              = &Error{Kind: KindTimeout}
	ErrReceiveFailed        = &Error{Kind: KindReceiveFailed}
	ErrSendFailed           = &Error{Kind: KindSendFailed}
)

func (e *Error) Error() string {
	msg := "udpsocket: "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	msg += e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Timeout() bool {
	return e.Kind == KindTimeout
}

// Temporary reports whether retrying the same call may succeed without
// changing the socket configuration.
func (e *Error) Temporary() bool {
	switch e.Kind {
	case KindTimeout, KindReceiveFailed, KindSendFailed:
		return true
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op string, cause error, msg string) *Error {
	e := &Error{Kind: kind, Op: op}
	switch {
	case cause != nil && msg != "":
		e.Err = errors.Wrap(cause, msg)
	case cause != nil:
		e.Err = cause
	case msg != "":
		e.Err = errors.New(msg)
	}
	return e
}
