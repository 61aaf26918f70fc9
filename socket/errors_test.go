package socket

import (
	"net"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestErrorIs(t *testing.T) {
	err := newError(KindBindFailed, "open", errFake, "")

	if !errors.Is(err, ErrBindFailed) {
		t.Error("Expected error to match ErrBindFailed")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("Expected error not to match ErrTimeout")
	}
	if !errors.Is(err, errFake) {
		t.Error("Expected error to unwrap to the platform error")
	}

	wrapped := errors.Wrap(err, "outer")
	if KindOf(wrapped) != KindBindFailed {
		t.Error("Expected KindOf to see through wrapping, got", KindOf(wrapped))
	}
	if KindOf(errFake) != KindUnknown {
		t.Error("Expected KindUnknown for foreign error")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("Expected KindUnknown for nil")
	}
}

func TestErrorMessage(t *testing.T) {
	err := newError(KindOptionConfigFailed, "open", errFake, "broadcast")
	msg := err.Error()
	for _, part := range []string{"udpsocket", "open", "option config failed", "broadcast", "fake failure"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Expected %q in %q", part, msg)
		}
	}

	if s := Kind(200).String(); s != "Kind(200)" {
		t.Error("Unexpected name for unknown kind:", s)
	}
}

func TestTimeoutIsNetError(t *testing.T) {
	var err error = newError(KindTimeout, "read", nil, "")

	ne, ok := err.(net.Error)
	if !ok {
		t.Fatal("Expected *Error to implement net.Error")
	}
	if !ne.Timeout() {
		t.Error("Expected Timeout() to be true")
	}

	hard := newError(KindReceiveFailed, "read", errFake, "")
	if hard.Timeout() {
		t.Error("Expected hard receive failure not to be a timeout")
	}
	if newError(KindInvalidPort, "parse", nil, "").Temporary() {
		t.Error("Configuration errors are not temporary")
	}
}
