package socket

import (
	"time"
)

var DefaultConfig = Config{
	LocalIP:        "127.0.0.1",
	PeerIP:         "127.0.0.1",
	Role:           SenderOnly,
	ReceiveTimeout: 100 * time.Millisecond,
}

// Config describes a socket for Open. Endpoints with port 0 are left unset.
type Config struct {
	LocalIP   string
	LocalPort int
	PeerIP    string
	PeerPort  int

	Role           Role
	ReceiveTimeout time.Duration // 0 blocks forever
}

// Open builds and opens a socket from cfg. On error the socket is closed
// and nil is returned.
func Open(cfg Config) (*Socket, error) {
	return openWith(NewSocket(), cfg)
}

func openWith(s *Socket, cfg Config) (*Socket, error) {
	if cfg.LocalPort != 0 {
		if err := s.SetLocalEndpoint(cfg.LocalIP, cfg.LocalPort); err != nil {
			return nil, err
		}
	}
	if cfg.PeerPort != 0 {
		if err := s.SetPeerEndpoint(cfg.PeerIP, cfg.PeerPort); err != nil {
			return nil, err
		}
	}
	if err := s.Open(cfg.Role, cfg.ReceiveTimeout); err != nil {
		return nil, err
	}
	return s, nil
}
