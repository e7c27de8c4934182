// Package address converts the places an item can live (a container slot, an
// equipment slot, a ground tile) into one Address shape used by every
// outbound request.
package address

import "fmt"

// Kind tags which variant an Address holds.
type Kind uint8

const (
	KindContainer Kind = iota + 1
	KindEquipment
	KindGround
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindEquipment:
		return "equipment"
	case KindGround:
		return "ground"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < KindContainer || k > KindGround {
		return nil, fmt.Errorf("address: invalid kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "container":
		*k = KindContainer
	case "equipment":
		*k = KindEquipment
	case "ground":
		*k = KindGround
	default:
		return fmt.Errorf("address: unknown kind %q", b)
	}
	return nil
}

// Position is a map tile coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Address is a tagged union. Slot holds the container slot for KindContainer
// and the equipment slot id for KindEquipment; Tile is only set for KindGround.
type Address struct {
	Kind        Kind     `json:"kind"`
	ContainerID int      `json:"container_id,omitempty"`
	Slot        int      `json:"slot,omitempty"`
	Tile        Position `json:"tile,omitzero"`
}

// Container returns the address of a container slot.
func Container(containerID, slot int) Address {
	return Address{Kind: KindContainer, ContainerID: containerID, Slot: slot}
}

// Equipment returns the address of an equipment slot.
func Equipment(slot int) Address {
	return Address{Kind: KindEquipment, Slot: slot}
}

// Ground returns the address of a map tile.
func Ground(tile Position) Address {
	return Address{Kind: KindGround, Tile: tile}
}

// IsZero reports whether a holds no location at all.
func (a Address) IsZero() bool { return a.Kind == 0 }

// Equal reports whether a and b name the same place.
func (a Address) Equal(b Address) bool { return a == b }

// InContainer reports whether a is a slot of container id.
func (a Address) InContainer(id int) bool {
	return a.Kind == KindContainer && a.ContainerID == id
}

func (a Address) String() string {
	switch a.Kind {
	case KindContainer:
		return fmt.Sprintf("container:%d/%d", a.ContainerID, a.Slot)
	case KindEquipment:
		return fmt.Sprintf("equipment:%d", a.Slot)
	case KindGround:
		return fmt.Sprintf("ground:%d,%d,%d", a.Tile.X, a.Tile.Y, a.Tile.Z)
	default:
		return "none"
	}
}

// Legacy coordinate encoding: inventory locations use X = 0xFFFF and encode
// the slot in Y/Z; container slots additionally set the 0x40 bit in Y, so
// only container ids below 0x40 fit.
const (
	inventoryX   = 0xFFFF
	containerBit = 0x40

	// MaxLegacyContainerID is the highest container id Position can encode.
	MaxLegacyContainerID = containerBit - 1
)

// Position returns the three-coordinate form older servers expect. ok is
// false for addresses that form cannot hold: containers above
// MaxLegacyContainerID, negative slots, and the zero Address.
func (a Address) Position() (p Position, ok bool) {
	switch a.Kind {
	case KindContainer:
		if a.ContainerID < 0 || a.ContainerID > MaxLegacyContainerID || a.Slot < 0 {
			return Position{}, false
		}
		return Position{X: inventoryX, Y: containerBit | a.ContainerID, Z: a.Slot}, true
	case KindEquipment:
		if a.Slot < 0 || a.Slot >= containerBit {
			return Position{}, false
		}
		return Position{X: inventoryX, Y: a.Slot, Z: 0}, true
	case KindGround:
		return a.Tile, true
	default:
		return Position{}, false
	}
}

// FromPosition is the inverse of Address.Position.
func FromPosition(p Position) Address {
	if p.X != inventoryX {
		return Ground(p)
	}
	if p.Y&containerBit != 0 {
		return Container(p.Y&^containerBit, p.Z)
	}
	return Equipment(p.Y)
}
