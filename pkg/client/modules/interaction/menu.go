package interaction

import (
	"go.uber.org/zap"

	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/item"
)

// ActionKind is one context menu entry.
type ActionKind uint8

const (
	ActionLook ActionKind = iota
	ActionUse
	ActionUseWith
	ActionOpen
	ActionMove
	ActionRead
)

func (k ActionKind) String() string {
	switch k {
	case ActionLook:
		return "Look"
	case ActionUse:
		return "Use"
	case ActionUseWith:
		return "Use with..."
	case ActionOpen:
		return "Open"
	case ActionMove:
		return "Move"
	case ActionRead:
		return "Read"
	default:
		return "?"
	}
}

// BuildMenu lists the actions available for an item, in display order.
// Look is always present.
func BuildMenu(ref item.Ref, caps item.Capabilities) []ActionKind {
	if ref.IsEmpty() {
		return nil
	}
	kinds := []ActionKind{ActionLook}
	if caps.Useable {
		kinds = append(kinds, ActionUse)
	}
	if caps.MultiUse {
		kinds = append(kinds, ActionUseWith)
	}
	if caps.Container {
		kinds = append(kinds, ActionOpen)
	}
	if caps.Moveable {
		kinds = append(kinds, ActionMove)
	}
	if caps.Readable {
		kinds = append(kinds, ActionRead)
	}
	return kinds
}

// Command is a menu action bound to the item it was built for.
type Command interface {
	Target() (address.Address, item.Ref)
}

// Subject is the item a command acts on and where it was when the menu was
// built.
type Subject struct {
	Address address.Address
	Item    item.Ref
}

func (s Subject) Target() (address.Address, item.Ref) { return s.Address, s.Item }

type (
	LookItem      struct{ Subject }
	UseItem       struct{ Subject }
	UseItemWith   struct{ Subject }
	OpenContainer struct{ Subject }
	MoveItem      struct{ Subject }
	ReadItem      struct{ Subject }
)

func commandFor(kind ActionKind, addr address.Address, ref item.Ref) Command {
	s := Subject{Address: addr, Item: ref}
	switch kind {
	case ActionUse:
		return UseItem{s}
	case ActionUseWith:
		return UseItemWith{s}
	case ActionOpen:
		return OpenContainer{s}
	case ActionMove:
		return MoveItem{s}
	case ActionRead:
		return ReadItem{s}
	default:
		return LookItem{s}
	}
}

// Action is a labelled menu entry ready to execute.
type Action struct {
	Kind    ActionKind
	Label   string
	Command Command
}

// Menu builds the context menu for the item in a container slot. An empty
// or missing slot has no menu.
func (m *Module) Menu(addr address.Address) []Action {
	if addr.Kind != address.KindContainer || m.registry == nil {
		return nil
	}
	ref, ok := m.registry.Slot(addr.ContainerID, addr.Slot)
	if !ok {
		return nil
	}
	return m.MenuFor(addr, ref)
}

// MenuFor builds the context menu for ref at addr, for items outside
// containers such as equipment or the ground.
func (m *Module) MenuFor(addr address.Address, ref item.Ref) []Action {
	kinds := BuildMenu(ref, m.Capabilities(ref.TypeID))
	if len(kinds) == 0 {
		return nil
	}
	actions := make([]Action, 0, len(kinds))
	for _, k := range kinds {
		actions = append(actions, Action{Kind: k, Label: k.String(), Command: commandFor(k, addr, ref)})
	}
	return actions
}

// Execute runs a menu command. A command whose container slot no longer
// holds the same item type is stale and is dropped; Execute reports whether
// anything was done.
func (m *Module) Execute(cmd Command) bool {
	addr, ref := cmd.Target()
	if !m.stillHolds(addr, ref) {
		m.logger().Debug("interaction: dropping stale command",
			zap.Stringer("address", addr),
			zap.Stringer("item", ref),
		)
		return false
	}

	switch cmd.(type) {
	case LookItem:
		m.RequestLook(addr, ref)
	case UseItem, ReadItem:
		m.RequestUse(addr, ref)
	case UseItemWith:
		m.RequestUseWith(addr, ref)
	case OpenContainer:
		m.RequestOpen(addr, ref)
	case MoveItem:
		return m.BeginDrag(addr, ref)
	default:
		return false
	}
	return true
}

func (m *Module) stillHolds(addr address.Address, ref item.Ref) bool {
	if addr.Kind != address.KindContainer {
		return true
	}
	if m.registry == nil {
		return false
	}
	cur, ok := m.registry.Slot(addr.ContainerID, addr.Slot)
	return ok && !cur.IsEmpty() && cur.TypeID == ref.TypeID
}
