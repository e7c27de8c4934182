package address

// Location is any place an item can be found.
type Location interface {
	location()
}

// ContainerSlot is a slot of an open container.
type ContainerSlot struct {
	ContainerID int
	Slot        int
}

// EquipmentSlot is one of the character's equipment slots.
type EquipmentSlot struct {
	Slot int
}

// GroundTile is a map tile.
type GroundTile struct {
	Pos Position
}

func (ContainerSlot) location() {}
func (EquipmentSlot) location() {}
func (GroundTile) location()    {}

// Resolve converts a location into an Address. A nil location resolves to
// the zero Address.
func Resolve(loc Location) Address {
	switch l := loc.(type) {
	case ContainerSlot:
		return Container(l.ContainerID, l.Slot)
	case EquipmentSlot:
		return Equipment(l.Slot)
	case GroundTile:
		return Ground(l.Pos)
	default:
		return Address{}
	}
}
