package containers

import (
	"errors"

	"github.com/go-mclib/containers/pkg/item"
)

var (
	ErrMissingContainer = errors.New("missing container")
	ErrSlotOutOfRange   = errors.New("slot out of range")
	ErrMalformedEvent   = errors.New("malformed event")
)

// Container is a server-authoritative, fixed-capacity slot array.
// len(Slots) == Capacity for the container's whole lifetime.
type Container struct {
	ID         int
	Name       string
	IconTypeID int
	Capacity   int
	HasParent  bool
	Slots      []item.Ref
}

func (c *Container) clone() Container {
	out := *c
	out.Slots = make([]item.Ref, len(c.Slots))
	copy(out.Slots, c.Slots)
	return out
}

func (c *Container) inRange(slot int) bool {
	return slot >= 0 && slot < len(c.Slots)
}

// Used returns the number of occupied slots.
func (c Container) Used() int {
	n := 0
	for _, s := range c.Slots {
		if !s.IsEmpty() {
			n++
		}
	}
	return n
}

// Change describes one slot mutation. Item is empty when the slot was cleared.
type Change struct {
	ContainerID int
	Slot        int
	Item        item.Ref
}
