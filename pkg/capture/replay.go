package capture

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/protocol"
)

// Dialer replays a capture file as a session. The address passed to Dial is
// the file path. Requests are discarded. Once the recording is exhausted the
// connection stays open, with reads blocked, until it is closed.
type Dialer struct {
	// Delay is waited before each event.
	Delay time.Duration
	// OnRequest, if set, sees every request written to the connection.
	OnRequest func(protocol.Request)
}

func (d Dialer) Dial(ctx context.Context, address string) (client.Conn, error) {
	r, err := OpenReader(address)
	if err != nil {
		return nil, err
	}
	return &replayConn{r: r, delay: d.Delay, onRequest: d.OnRequest, closed: make(chan struct{})}, nil
}

type replayConn struct {
	r         *Reader
	delay     time.Duration
	onRequest func(protocol.Request)

	closeOnce  sync.Once
	closed     chan struct{}
	readerOnce sync.Once
}

// The reader is only touched from the reading goroutine, so it is released
// there rather than in Close.
func (c *replayConn) releaseReader() {
	c.readerOnce.Do(func() { _ = c.r.Close() })
}

func (c *replayConn) ReadEvent() (protocol.Event, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-c.closed:
			c.releaseReader()
			return nil, io.EOF
		}
	}
	select {
	case <-c.closed:
		c.releaseReader()
		return nil, io.EOF
	default:
	}

	ev, err := c.r.Next()
	if err != nil && !errors.Is(err, protocol.ErrMalformedFrame) {
		c.releaseReader()
		<-c.closed
		return nil, io.EOF
	}
	return ev, err
}

func (c *replayConn) WriteRequest(req protocol.Request) error {
	if c.onRequest != nil {
		c.onRequest(req)
	}
	return nil
}

func (c *replayConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}
