package interaction

import (
	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/item"
	"github.com/go-mclib/containers/pkg/protocol"
)

func (m *Module) send(req protocol.Request) {
	if m.client == nil {
		return
	}
	m.client.SendRequest(req)
}

// RequestMove asks the server to move amount items of ref's type.
func (m *Module) RequestMove(from, to address.Address, ref item.Ref, amount int) {
	m.send(protocol.MoveRequest{From: from, To: to, ItemTypeID: ref.TypeID, Amount: amount})
}

func (m *Module) RequestUse(addr address.Address, ref item.Ref) {
	m.send(protocol.UseRequest{Address: addr, ItemTypeID: ref.TypeID, Slot: addr.Slot})
}

// RequestUseWith starts the targeting flow for ref; the server side picks up
// from there.
func (m *Module) RequestUseWith(addr address.Address, ref item.Ref) {
	m.send(protocol.UseWithRequest{Item: ref, Address: addr})
}

func (m *Module) RequestOpen(addr address.Address, ref item.Ref) {
	m.send(protocol.OpenRequest{Address: addr, ItemTypeID: ref.TypeID, Slot: addr.Slot})
}

func (m *Module) RequestLook(addr address.Address, ref item.Ref) {
	m.send(protocol.LookRequest{Address: addr, ItemTypeID: ref.TypeID, Slot: addr.Slot})
}

func (m *Module) RequestClose(containerID int) {
	m.send(protocol.CloseRequest{ContainerID: containerID})
}

func (m *Module) RequestOpenParent(containerID int) {
	m.send(protocol.OpenParentRequest{ContainerID: containerID})
}
