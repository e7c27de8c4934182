package containers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/go-mclib/containers/pkg/item"
	"github.com/go-mclib/containers/pkg/protocol"
)

// HandleEvent applies one server event. Events that reference a container
// that is not open, a slot outside its capacity, or an empty item are
// dropped and logged; they never reach the user.
func (m *Module) HandleEvent(ev protocol.Event) {
	var err error
	switch e := ev.(type) {
	case protocol.ContainerOpen:
		err = m.handleOpen(e)
	case protocol.ContainerClose:
		m.handleClose(e)
	case protocol.ItemAdd:
		err = m.setSlot(e.ContainerID, e.Slot, e.Item)
	case protocol.ItemUpdate:
		err = m.setSlot(e.ContainerID, e.Slot, e.Item)
	case protocol.ItemRemove:
		err = m.clearSlot(e.ContainerID, e.Slot)
	}
	if err != nil {
		m.logger().Debug("containers: dropped event", zap.String("event", ev.Type()), zap.Error(err))
	}
}

func (m *Module) handleOpen(e protocol.ContainerOpen) error {
	if e.Capacity < 0 {
		return fmt.Errorf("%w: container %d has negative capacity %d", ErrMalformedEvent, e.ContainerID, e.Capacity)
	}

	// replace atomically: the old container and its window go first
	m.destroy(e.ContainerID)

	c := &Container{
		ID:         e.ContainerID,
		Name:       e.Name,
		IconTypeID: e.ItemTypeID,
		Capacity:   e.Capacity,
		HasParent:  e.HasParent,
		Slots:      make([]item.Ref, e.Capacity),
	}
	dropped := 0
	for slot, ref := range e.Items {
		if !c.inRange(slot) || ref.IsEmpty() {
			dropped++
			continue
		}
		c.Slots[slot] = ref
	}

	m.mu.Lock()
	m.open[c.ID] = c
	snap := c.clone()
	m.mu.Unlock()

	if dropped > 0 {
		m.logger().Debug("containers: dropped initial items",
			zap.Int("container", c.ID),
			zap.Int("dropped", dropped),
			zap.Error(ErrSlotOutOfRange),
		)
	}

	for _, cb := range m.onOpen {
		cb(snap)
	}
	return nil
}

func (m *Module) handleClose(e protocol.ContainerClose) {
	m.destroy(e.ContainerID)
}

// destroy removes container id, drops its subscriptions and fires close
// hooks. It reports whether the container existed.
func (m *Module) destroy(id int) bool {
	m.mu.Lock()
	if _, ok := m.open[id]; !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.open, id)
	delete(m.subs, id)
	m.mu.Unlock()

	for _, cb := range m.onClose {
		cb(id)
	}
	return true
}

func (m *Module) setSlot(id, slot int, ref item.Ref) error {
	if ref.IsEmpty() {
		return fmt.Errorf("%w: empty item for container %d slot %d", ErrMalformedEvent, id, slot)
	}

	m.mu.Lock()
	c, ok := m.open[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrMissingContainer, id)
	}
	if !c.inRange(slot) {
		m.mu.Unlock()
		return fmt.Errorf("%w: container %d slot %d (capacity %d)", ErrSlotOutOfRange, id, slot, c.Capacity)
	}
	c.Slots[slot] = ref
	m.mu.Unlock()

	m.notify(Change{ContainerID: id, Slot: slot, Item: ref})
	return nil
}

func (m *Module) clearSlot(id, slot int) error {
	m.mu.Lock()
	c, ok := m.open[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrMissingContainer, id)
	}
	if !c.inRange(slot) {
		m.mu.Unlock()
		return fmt.Errorf("%w: container %d slot %d (capacity %d)", ErrSlotOutOfRange, id, slot, c.Capacity)
	}
	if c.Slots[slot].IsEmpty() {
		m.mu.Unlock()
		return nil
	}
	c.Slots[slot] = item.Ref{}
	m.mu.Unlock()

	m.notify(Change{ContainerID: id, Slot: slot})
	return nil
}
