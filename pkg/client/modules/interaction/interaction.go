// Package interaction turns user input on container slots into outbound
// requests: drag and drop, partial-stack transfers and context menu actions.
//
// Nothing here writes container state. The module reads the registry through
// the Registry interface and emits requests; the registry changes only when
// the server answers with an event.
package interaction

import (
	"sync"

	"go.uber.org/zap"

	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/client/modules/containers"
	"github.com/go-mclib/containers/pkg/item"
	"github.com/go-mclib/containers/pkg/protocol"
)

const ModuleName = "interaction"

// Registry is the read side of the container registry.
type Registry interface {
	Slot(containerID, slot int) (item.Ref, bool)
	IsOpen(containerID int) bool
}

// Modifiers are the keys held while pressing or releasing.
type Modifiers uint8

const (
	// ModUse uses the item on press instead of picking it up.
	ModUse Modifiers = 1 << iota
	// ModQuantity asks for a partial amount when dropping a stack.
	ModQuantity
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

type Module struct {
	client   *client.Client
	registry Registry
	provider item.Provider

	mu        sync.RWMutex
	drag      *DragIntent
	dragOwner *SlotController
	transfer  *PendingTransfer
	// containers the user closed whose close the server has not confirmed
	closing map[int]bool

	onStateChange []func()
}

// New creates the module. The registry is taken from the client's containers
// module on Init, so register containers first.
func New(provider item.Provider) *Module {
	return &Module{provider: provider, closing: make(map[int]bool)}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) {
	m.client = c
	if reg := containers.From(c); reg != nil {
		m.registry = reg
	}
}

// HandleEvent is a no-op: window teardown cancels stale intents through
// CancelFor.
func (m *Module) HandleEvent(protocol.Event) {}

// Reset drops any drag or pending transfer.
func (m *Module) Reset() {
	m.mu.Lock()
	changed := m.drag != nil || m.transfer != nil
	m.clearDragLocked()
	m.transfer = nil
	clear(m.closing)
	m.mu.Unlock()
	if changed {
		m.stateChanged()
	}
}

func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// MarkClosing records that the user closed container id. Until ClearClosing,
// the container is neither a drag source nor a drop target, even though the
// registry still holds it.
func (m *Module) MarkClosing(id int) {
	m.mu.Lock()
	m.closing[id] = true
	m.mu.Unlock()
}

// ClearClosing forgets a closing mark once the container is gone.
func (m *Module) ClearClosing(id int) {
	m.mu.Lock()
	delete(m.closing, id)
	m.mu.Unlock()
}

func (m *Module) isClosing(addr address.Address) bool {
	if addr.Kind != address.KindContainer {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closing[addr.ContainerID]
}

// OnStateChange registers a callback fired whenever the drag or the pending
// transfer changes. UIs use it to redraw.
func (m *Module) OnStateChange(cb func()) {
	m.onStateChange = append(m.onStateChange, cb)
}

func (m *Module) stateChanged() {
	for _, cb := range m.onStateChange {
		cb()
	}
}

// Capabilities looks up what can be done with an item type.
func (m *Module) Capabilities(typeID int) item.Capabilities {
	if m.provider == nil {
		return item.Capabilities{}
	}
	return m.provider.Capabilities(typeID)
}

func (m *Module) logger() *zap.Logger {
	if m.client == nil {
		return zap.NewNop()
	}
	return m.client.Logger
}
