package client

import (
	"context"

	"github.com/go-mclib/containers/pkg/protocol"
)

// Conn is one session connection to the game server.
//
// ReadEvent blocks until the next event arrives. Frames that fail to decode
// are reported as errors wrapping protocol.ErrMalformedFrame; any other error
// ends the session.
type Conn interface {
	ReadEvent() (protocol.Event, error)
	WriteRequest(req protocol.Request) error
	Close() error
}

// Dialer opens session connections.
type Dialer interface {
	Dial(ctx context.Context, address string) (Conn, error)
}
