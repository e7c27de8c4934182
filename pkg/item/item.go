// Package item holds the item value type shared by every container slot and
// the capability lookup used to decide what a player can do with an item.
package item

import "fmt"

// Ref is an item as it sits in a slot: a type id and a stack count.
// The zero Ref is an empty slot.
type Ref struct {
	TypeID int `json:"type_id"`
	Count  int `json:"count"`
}

// IsEmpty reports whether the ref describes an empty slot.
func (r Ref) IsEmpty() bool { return r.Count < 1 }

func (r Ref) String() string {
	if r.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%dx%d", r.TypeID, r.Count)
}

// Capabilities are resolved per item type and never stored on a Ref.
type Capabilities struct {
	Useable   bool
	MultiUse  bool
	Container bool
	Moveable  bool
	Readable  bool
}

// Provider resolves item type ids to capabilities and display metadata.
type Provider interface {
	Capabilities(typeID int) Capabilities
	Name(typeID int) string
}
