package client

import "github.com/go-mclib/containers/pkg/protocol"

// Module is a pluggable session-state component.
type Module interface {
	// Name returns a unique key for this module (e.g. "containers", "windows").
	Name() string
	// Init is called once when the module is registered on a client.
	// Store the *Client reference for later use.
	Init(c *Client)
	// HandleEvent is called for every inbound server event, in arrival order.
	HandleEvent(ev protocol.Event)
	// Reset is called on session teardown and before every (re)connect.
	Reset()
}

// ConnectHandler is optionally implemented by modules that need to act
// after the session connection is established but before events are read.
type ConnectHandler interface {
	OnConnect()
}

// Handler is a lightweight event callback for one-off matching.
type Handler func(c *Client, ev protocol.Event)
