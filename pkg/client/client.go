package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/go-mclib/containers/pkg/protocol"
)

const (
	DefaultQueueSize      = 100
	DefaultReconnectDelay = 3 * time.Second
)

// Client is the session context. It owns the registered modules and runs the
// single dispatch loop: inbound events and user input closures are handled
// one at a time, each to completion, on the loop goroutine.
type Client struct {
	// connection
	Address string
	Dialer  Dialer

	// reconnection
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration

	Logger               *zap.Logger
	OutgoingRequestQueue chan protocol.Request

	// modules
	modules       []Module
	modulesByName map[string]Module
	handlers      []Handler

	input       chan func()
	connMu      sync.Mutex
	conn        Conn
	forceClosed atomic.Bool
}

// New creates a minimal client. Register modules before calling ConnectAndStart.
func New(address string, dialer Dialer) *Client {
	return &Client{
		Address:              address,
		Dialer:               dialer,
		MaxReconnectAttempts: 5,
		ReconnectDelay:       DefaultReconnectDelay,
		Logger:               zap.NewNop(),
		OutgoingRequestQueue: make(chan protocol.Request, DefaultQueueSize),
		modulesByName:        make(map[string]Module),
		input:                make(chan func(), DefaultQueueSize),
	}
}

// Register adds a module to the client. Panics on duplicate name.
func (c *Client) Register(m Module) {
	if _, exists := c.modulesByName[m.Name()]; exists {
		panic("module already registered: " + m.Name())
	}
	c.modules = append(c.modules, m)
	c.modulesByName[m.Name()] = m
	m.Init(c)
}

// Module returns a registered module by name, or nil.
func (c *Client) Module(name string) Module {
	return c.modulesByName[name]
}

// RegisterHandler appends a lightweight event callback (escape hatch).
func (c *Client) RegisterHandler(h Handler) {
	c.handlers = append(c.handlers, h)
}

// SendRequest queues a request for transmission. It never blocks: when the
// queue is full the request is dropped and logged.
func (c *Client) SendRequest(req protocol.Request) {
	select {
	case c.OutgoingRequestQueue <- req:
	default:
		c.Logger.Warn("request queue full, dropping request", zap.String("type", req.Type()))
	}
}

// Do schedules fn on the dispatch loop. User input handlers go through here
// so they never interleave with event handling.
func (c *Client) Do(fn func()) {
	select {
	case c.input <- fn:
	default:
		c.Logger.Warn("input queue full, dropping input")
	}
}

// Dispatch delivers ev to every module and handler on the caller's goroutine.
// The dispatch loop calls it for each inbound event; tests and offline
// replays call it directly.
func (c *Client) Dispatch(ev protocol.Event) {
	for _, m := range c.modules {
		m.HandleEvent(ev)
	}
	for _, h := range c.handlers {
		h(c, ev)
	}
}

// Teardown resets every module, destroying all session state at once.
func (c *Client) Teardown() {
	for _, m := range c.modules {
		m.Reset()
	}
}

// Disconnect closes the connection. If force is true, no reconnect is attempted.
func (c *Client) Disconnect(force bool) error {
	c.forceClosed.Store(force)
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// ConnectAndStart connects and enters the dispatch loop, reconnecting on
// connection errors up to MaxReconnectAttempts (-1 = forever, 0 = never).
func (c *Client) ConnectAndStart(ctx context.Context) error {
	if c.Dialer == nil {
		return errors.New("client: no dialer configured")
	}

	attempts := 0
	maxAttempts := c.MaxReconnectAttempts

	for {
		err := c.connectAndStartOnce(ctx)
		if err == nil {
			return nil
		}

		c.Logger.Warn("connection error", zap.Error(err))

		if c.forceClosed.Load() || maxAttempts == 0 {
			c.Logger.Info("not reconnecting, exiting")
			return err
		}

		attempts++
		if maxAttempts > 0 && attempts > maxAttempts {
			c.Logger.Warn("max reconnect attempts reached, giving up", zap.Int("attempts", maxAttempts))
			return err
		}
		c.Logger.Info("reconnecting",
			zap.Duration("delay", c.ReconnectDelay),
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", maxAttempts),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.ReconnectDelay):
		}
	}
}

func (c *Client) connectAndStartOnce(ctx context.Context) error {
	// every exit path tears the session down, including cancellation
	c.Teardown()
	defer c.Teardown()

	conn, err := c.Dialer.Dial(ctx, c.Address)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	defer func() {
		c.connMu.Lock()
		c.conn = nil
		c.connMu.Unlock()
		_ = conn.Close()
	}()

	c.Logger.Info("session connected", zap.String("address", c.Address))

	for _, m := range c.modules {
		if ch, ok := m.(ConnectHandler); ok {
			ch.OnConnect()
		}
	}

	done := make(chan struct{})
	defer close(done)

	// outgoing queue worker
	go func() {
		for {
			select {
			case <-done:
				return
			case req := <-c.OutgoingRequestQueue:
				if err := conn.WriteRequest(req); err != nil {
					c.Logger.Warn("error writing request from queue", zap.String("type", req.Type()), zap.Error(err))
				}
			}
		}
	}()

	// reader
	events := make(chan protocol.Event, DefaultQueueSize)
	readErr := make(chan error, 1)
	go func() {
		for {
			ev, err := conn.ReadEvent()
			if err != nil {
				if errors.Is(err, protocol.ErrMalformedFrame) {
					c.Logger.Debug("dropping malformed frame", zap.Error(err))
					continue
				}
				readErr <- err
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	// dispatch loop
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			c.Dispatch(ev)
		case fn := <-c.input:
			fn()
		case err := <-readErr:
			if c.forceClosed.Load() {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
	}
}
