package interaction

import (
	"github.com/go-mclib/containers/pkg/address"
)

// State is a slot controller's interaction state.
type State uint8

const (
	StateIdle State = iota
	StatePressed
	StateDragging
)

func (s State) String() string {
	switch s {
	case StatePressed:
		return "pressed"
	case StateDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// SlotController handles pointer input for one container slot.
// Its state lives under the module lock because a drop, a window close or a
// new drag elsewhere can end it.
type SlotController struct {
	m     *Module
	addr  address.Address
	state State
	hover address.Address
	dead  bool
}

// NewSlotController binds a controller to the slot at addr.
func (m *Module) NewSlotController(addr address.Address) *SlotController {
	return &SlotController{m: m, addr: addr}
}

func (s *SlotController) Address() address.Address { return s.addr }

func (s *SlotController) State() State {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return s.state
}

// Hovered returns the last target hovered during a drag.
func (s *SlotController) Hovered() (address.Address, bool) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return s.hover, s.state == StateDragging
}

// Press picks up the slot's item, or uses it when ModUse is held.
// An empty slot does nothing, and nothing is picked up while a transfer
// dialog is open.
func (s *SlotController) Press(mods Modifiers) Outcome {
	s.m.mu.RLock()
	dead := s.dead
	s.m.mu.RUnlock()
	if dead || s.m.registry == nil {
		return OutcomeNone
	}

	ref, ok := s.m.registry.Slot(s.addr.ContainerID, s.addr.Slot)
	if !ok || ref.IsEmpty() {
		return OutcomeNone
	}
	if mods.Has(ModUse) {
		s.m.RequestUse(s.addr, ref)
		return OutcomeUsed
	}
	if !s.m.beginDrag(s.addr, ref, s) {
		return OutcomeNone
	}
	return OutcomePickedUp
}

// Hover moves the drag over target. It only changes what is drawn and
// reports whether target would accept the drop.
func (s *SlotController) Hover(target address.Address) bool {
	s.m.mu.Lock()
	if s.dead || s.state == StateIdle {
		s.m.mu.Unlock()
		return false
	}
	s.state = StateDragging
	s.hover = target
	s.m.mu.Unlock()
	return s.m.ValidTarget(target)
}

// Release drops the item picked up from this slot on target.
func (s *SlotController) Release(target address.Address, mods Modifiers) Outcome {
	s.m.mu.RLock()
	owns := !s.dead && s.state != StateIdle && s.m.dragOwner == s
	s.m.mu.RUnlock()
	if !owns {
		return OutcomeCancelled
	}
	return s.m.Drop(target, mods)
}

// Cancel abandons a drag started from this slot.
func (s *SlotController) Cancel() Outcome {
	s.m.mu.Lock()
	owns := s.m.dragOwner == s
	if owns {
		s.m.clearDragLocked()
	}
	s.state = StateIdle
	s.m.mu.Unlock()
	if !owns {
		return OutcomeNone
	}
	s.m.stateChanged()
	return OutcomeCancelled
}

// RightClick returns the context menu for the slot's item, whatever the
// drag state is.
func (s *SlotController) RightClick() []Action {
	return s.m.Menu(s.addr)
}

// Teardown detaches the controller. A drag it owns is cancelled and later
// input is ignored.
func (s *SlotController) Teardown() {
	s.Cancel()
	s.m.mu.Lock()
	s.dead = true
	s.m.mu.Unlock()
}
