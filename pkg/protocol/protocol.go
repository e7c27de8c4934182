// Package protocol defines the container events pushed by the server, the
// requests the client sends back, and their JSON wire envelope.
package protocol

import (
	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/item"
)

const Version = "1"

// Inbound event types.
const (
	TypeContainerOpen  = "container_open"
	TypeContainerClose = "container_close"
	TypeItemAdd        = "item_add"
	TypeItemUpdate     = "item_update"
	TypeItemRemove     = "item_remove"
)

// Outbound request types.
const (
	TypeOpen       = "open"
	TypeOpenParent = "open_parent"
	TypeClose      = "close"
	TypeMove       = "move"
	TypeUse        = "use"
	TypeUseWith    = "use_with"
	TypeLook       = "look"
)

// Event is a server-pushed container mutation.
type Event interface {
	Type() string
}

// ContainerOpen creates (or replaces) container ContainerID.
// Items maps slot index to the item in that slot.
type ContainerOpen struct {
	ContainerID int              `json:"container_id"`
	ItemTypeID  int              `json:"item_type_id"`
	Name        string           `json:"name"`
	Capacity    int              `json:"capacity"`
	HasParent   bool             `json:"has_parent"`
	Items       map[int]item.Ref `json:"items,omitempty"`
}

type ContainerClose struct {
	ContainerID int `json:"container_id"`
}

type ItemAdd struct {
	ContainerID int      `json:"container_id"`
	Slot        int      `json:"slot"`
	Item        item.Ref `json:"item"`
}

type ItemUpdate struct {
	ContainerID int      `json:"container_id"`
	Slot        int      `json:"slot"`
	Item        item.Ref `json:"item"`
}

type ItemRemove struct {
	ContainerID int `json:"container_id"`
	Slot        int `json:"slot"`
}

func (ContainerOpen) Type() string  { return TypeContainerOpen }
func (ContainerClose) Type() string { return TypeContainerClose }
func (ItemAdd) Type() string        { return TypeItemAdd }
func (ItemUpdate) Type() string     { return TypeItemUpdate }
func (ItemRemove) Type() string     { return TypeItemRemove }

// Request is a fire-and-forget client intent. Nothing is read back.
type Request interface {
	Type() string
}

type OpenRequest struct {
	Address    address.Address `json:"address"`
	ItemTypeID int             `json:"item_type_id"`
	Slot       int             `json:"slot"`
}

// OpenParentRequest asks the server to show the container holding ContainerID.
type OpenParentRequest struct {
	ContainerID int `json:"container_id"`
}

type CloseRequest struct {
	ContainerID int `json:"container_id"`
}

type MoveRequest struct {
	From       address.Address `json:"from"`
	To         address.Address `json:"to"`
	ItemTypeID int             `json:"item_type_id"`
	Amount     int             `json:"amount"`
}

type UseRequest struct {
	Address    address.Address `json:"address"`
	ItemTypeID int             `json:"item_type_id"`
	Slot       int             `json:"slot"`
}

// UseWithRequest hands the item to the targeting flow that picks what it is
// used on.
type UseWithRequest struct {
	Item    item.Ref        `json:"item"`
	Address address.Address `json:"address"`
}

type LookRequest struct {
	Address    address.Address `json:"address"`
	ItemTypeID int             `json:"item_type_id"`
	Slot       int             `json:"slot"`
}

func (OpenRequest) Type() string       { return TypeOpen }
func (OpenParentRequest) Type() string { return TypeOpenParent }
func (CloseRequest) Type() string      { return TypeClose }
func (MoveRequest) Type() string       { return TypeMove }
func (UseRequest) Type() string        { return TypeUse }
func (UseWithRequest) Type() string    { return TypeUseWith }
func (LookRequest) Type() string       { return TypeLook }
