// Package natsbus carries a container session over NATS. The server
// publishes event envelopes on <prefix>.<session>.events and reads request
// envelopes from <prefix>.<session>.requests.
package natsbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/protocol"
)

const DefaultPrefix = "containers"

// Dialer opens NATS sessions. An empty SessionID gets a random one on each
// dial.
type Dialer struct {
	Prefix    string
	SessionID string
	Options   []nats.Option
}

// EventsSubject returns the subject events for session arrive on.
func EventsSubject(prefix, session string) string {
	return fmt.Sprintf("%s.%s.events", prefix, session)
}

// RequestsSubject returns the subject requests for session are published to.
func RequestsSubject(prefix, session string) string {
	return fmt.Sprintf("%s.%s.requests", prefix, session)
}

func (d Dialer) Dial(ctx context.Context, address string) (client.Conn, error) {
	prefix := d.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	session := d.SessionID
	if session == "" {
		session = uuid.NewString()
	}

	nc, err := nats.Connect(address, d.Options...)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", address, err)
	}
	sub, err := nc.SubscribeSync(EventsSubject(prefix, session))
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribing to events: %w", err)
	}
	if err := flush(ctx, nc); err != nil {
		nc.Close()
		return nil, fmt.Errorf("flushing subscription: %w", err)
	}

	connCtx, cancel := context.WithCancel(context.Background())
	return &Conn{
		nc:       nc,
		sub:      sub,
		session:  session,
		requests: RequestsSubject(prefix, session),
		ctx:      connCtx,
		cancel:   cancel,
	}, nil
}

// flush waits for the server to register the subscription. FlushWithContext
// refuses contexts without a deadline.
func flush(ctx context.Context, nc *nats.Conn) error {
	if _, ok := ctx.Deadline(); ok {
		return nc.FlushWithContext(ctx)
	}
	return nc.Flush()
}

// Conn adapts a NATS subscription to client.Conn.
type Conn struct {
	nc       *nats.Conn
	sub      *nats.Subscription
	session  string
	requests string

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Session returns the session id the connection is bound to.
func (c *Conn) Session() string { return c.session }

func (c *Conn) ReadEvent() (protocol.Event, error) {
	msg, err := c.sub.NextMsgWithContext(c.ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, nats.ErrConnectionClosed
		}
		return nil, err
	}
	return protocol.DecodeEvent(msg.Data)
}

func (c *Conn) WriteRequest(req protocol.Request) error {
	b, err := protocol.EncodeRequest(req)
	if err != nil {
		return err
	}
	return c.nc.Publish(c.requests, b)
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.sub.Unsubscribe()
		c.nc.Close()
	})
	return nil
}
