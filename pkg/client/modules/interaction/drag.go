package interaction

import (
	"go.uber.org/zap"

	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/item"
)

// DragIntent records an item picked up and not yet dropped.
type DragIntent struct {
	Source        address.Address
	Item          item.Ref
	CountAtPickup int
}

// Outcome is what a press or drop ended up doing.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeUsed
	OutcomePickedUp
	OutcomeDroppedOnValidTarget
	OutcomeDroppedOnInvalidTarget
	OutcomeTransferPending
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUsed:
		return "used"
	case OutcomePickedUp:
		return "picked up"
	case OutcomeDroppedOnValidTarget:
		return "dropped"
	case OutcomeDroppedOnInvalidTarget:
		return "dropped on invalid target"
	case OutcomeTransferPending:
		return "transfer pending"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Drag returns the current drag intent, if any.
func (m *Module) Drag() (DragIntent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.drag == nil {
		return DragIntent{}, false
	}
	return *m.drag, true
}

// BeginDrag arms a drag of ref from source. It replaces any earlier drag but
// is refused while a transfer dialog is open.
func (m *Module) BeginDrag(source address.Address, ref item.Ref) bool {
	return m.beginDrag(source, ref, nil)
}

func (m *Module) beginDrag(source address.Address, ref item.Ref, owner *SlotController) bool {
	m.mu.Lock()
	if m.transfer != nil {
		m.mu.Unlock()
		return false
	}
	m.clearDragLocked()
	m.drag = &DragIntent{Source: source, Item: ref, CountAtPickup: ref.Count}
	m.dragOwner = owner
	if owner != nil {
		owner.state = StatePressed
	}
	m.mu.Unlock()
	m.stateChanged()
	return true
}

// CancelDrag drops the drag intent without emitting anything.
func (m *Module) CancelDrag() {
	m.mu.Lock()
	had := m.drag != nil
	m.clearDragLocked()
	m.mu.Unlock()
	if had {
		m.stateChanged()
	}
}

func (m *Module) clearDragLocked() {
	if m.dragOwner != nil {
		m.dragOwner.state = StateIdle
	}
	m.drag = nil
	m.dragOwner = nil
}

// CancelFor cancels the drag and the pending transfer when either one
// touches containerID. Windows call it when they close.
func (m *Module) CancelFor(containerID int) {
	m.mu.Lock()
	changed := false
	if m.drag != nil && m.drag.Source.InContainer(containerID) {
		m.clearDragLocked()
		changed = true
	}
	if t := m.transfer; t != nil && (t.Source.InContainer(containerID) || t.Dest.InContainer(containerID)) {
		m.transfer = nil
		changed = true
	}
	m.mu.Unlock()
	if changed {
		m.logger().Debug("interaction: cancelled intents for closed container", zap.Int("container", containerID))
		m.stateChanged()
	}
}

// ValidTarget reports whether an item may be dropped on target: an in-range
// slot of an open container the user has not closed, an equipment slot, or
// the ground.
func (m *Module) ValidTarget(target address.Address) bool {
	switch target.Kind {
	case address.KindContainer:
		if m.registry == nil || m.isClosing(target) {
			return false
		}
		_, ok := m.registry.Slot(target.ContainerID, target.Slot)
		return ok
	case address.KindEquipment:
		return target.Slot >= 0
	case address.KindGround:
		return true
	default:
		return false
	}
}

// sourceValid reports whether the drag source still exists. A container
// source must still be open and not closing.
func (m *Module) sourceValid(source address.Address) bool {
	if source.Kind != address.KindContainer {
		return true
	}
	return m.registry != nil && m.registry.IsOpen(source.ContainerID) && !m.isClosing(source)
}

// Drop ends the current drag on target.
//
// Dropping on the source itself, on an invalid target, on a container the
// user has closed, or after the source container closed emits nothing. A stack of more than one with ModQuantity
// held opens a pending transfer; anything else moves the whole stack.
func (m *Module) Drop(target address.Address, mods Modifiers) Outcome {
	m.mu.Lock()
	if m.drag == nil {
		m.mu.Unlock()
		return OutcomeCancelled
	}
	intent := *m.drag
	m.clearDragLocked()
	m.mu.Unlock()
	defer m.stateChanged()

	switch {
	case target.Equal(intent.Source):
		return OutcomeCancelled
	case m.isClosing(target):
		m.logger().Debug("interaction: drop on closing container", zap.Stringer("target", target))
		return OutcomeCancelled
	case !m.sourceValid(intent.Source):
		m.logger().Debug("interaction: drag source gone", zap.Stringer("source", intent.Source))
		return OutcomeCancelled
	case !m.ValidTarget(target):
		m.logger().Debug("interaction: invalid drop target", zap.Stringer("target", target))
		return OutcomeDroppedOnInvalidTarget
	}

	if intent.CountAtPickup > 1 && mods.Has(ModQuantity) {
		m.BeginTransfer(intent.Item, intent.Source, target, intent.CountAtPickup)
		return OutcomeTransferPending
	}
	m.RequestMove(intent.Source, target, intent.Item, intent.CountAtPickup)
	return OutcomeDroppedOnValidTarget
}
