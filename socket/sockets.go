package socket

// Datagram is one received packet with an owned copy of its payload.
type Datagram struct {
	Origin Endpoint
	Data   []byte
}

// Conn is the I/O surface of an open Socket.
type Conn interface {
	ReadData(buf []byte) (int, Endpoint, error)
	SendData(data []byte) (int, error)
	SendDataTo(data []byte, dst Endpoint) (int, error)
	IsOpen() bool
	Close() error
}

var _ Conn = (*Socket)(nil)
