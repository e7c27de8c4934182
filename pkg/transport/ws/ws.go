// Package ws carries a container session over a websocket. Each text frame
// holds one JSON envelope.
package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/protocol"
)

const (
	DefaultHandshakeTimeout = 5 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
)

// Dialer opens websocket sessions.
type Dialer struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	Header           http.Header
}

func (d Dialer) Dial(ctx context.Context, address string) (client.Conn, error) {
	wd := websocket.Dialer{HandshakeTimeout: d.HandshakeTimeout}
	if wd.HandshakeTimeout == 0 {
		wd.HandshakeTimeout = DefaultHandshakeTimeout
	}
	conn, _, err := wd.DialContext(ctx, address, d.Header)
	if err != nil {
		return nil, fmt.Errorf("ws dial %s: %w", address, err)
	}
	writeTimeout := d.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return NewConn(conn, writeTimeout), nil
}

// Conn adapts a websocket connection to client.Conn.
type Conn struct {
	ws           *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func NewConn(conn *websocket.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{ws: conn, writeTimeout: writeTimeout}
}

// ReadEvent blocks for the next frame. Binary and undecodable frames are
// reported as malformed.
func (c *Conn) ReadEvent() (protocol.Event, error) {
	mt, msg, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	if mt != websocket.TextMessage {
		return nil, fmt.Errorf("%w: unexpected websocket message type %d", protocol.ErrMalformedFrame, mt)
	}
	return protocol.DecodeEvent(msg)
}

func (c *Conn) WriteRequest(req protocol.Request) error {
	b, err := protocol.EncodeRequest(req)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

func (c *Conn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}
