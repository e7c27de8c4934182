// Package containers mirrors the server's open containers.
//
// The registry is written only by HandleEvent, on the client's dispatch loop.
// Everything else in the client reads it through Get, SlotsView and Slot and
// asks the server for changes with requests; a change shows up here only once
// the server confirms it with an event.
package containers

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/item"
)

const ModuleName = "containers"

type subscriber struct {
	id uint64
	fn func(Change)
}

type Module struct {
	client *client.Client
	mu     sync.RWMutex

	open    map[int]*Container
	subs    map[int][]subscriber
	nextSub uint64

	onOpen  []func(c Container)
	onClose []func(id int)
}

func New() *Module {
	return &Module{
		open: make(map[int]*Container),
		subs: make(map[int][]subscriber),
	}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) { m.client = c }

// Reset closes every open container, firing close hooks for each id in
// ascending order.
func (m *Module) Reset() {
	for _, id := range m.OpenIDs() {
		m.destroy(id)
	}
	m.mu.Lock()
	m.subs = make(map[int][]subscriber)
	m.mu.Unlock()
}

func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// events

// OnOpen registers a hook called after a container is created.
func (m *Module) OnOpen(cb func(c Container)) { m.onOpen = append(m.onOpen, cb) }

// OnClose registers a hook called after a container is destroyed, including
// when it is replaced by a reopen of the same id.
func (m *Module) OnClose(cb func(id int)) { m.onClose = append(m.onClose, cb) }

// reads

// Get returns a snapshot of container id.
func (m *Module) Get(id int) (Container, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.open[id]
	if !ok {
		return Container{}, false
	}
	return c.clone(), true
}

// SlotsView returns a copy of container id's slots, or nil if it is not open.
func (m *Module) SlotsView(id int) []item.Ref {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.open[id]
	if !ok {
		return nil
	}
	out := make([]item.Ref, len(c.Slots))
	copy(out, c.Slots)
	return out
}

// Slot returns the item in a slot. ok is false when the container is not open
// or the slot is out of range; an empty slot returns the zero Ref and true.
func (m *Module) Slot(id, slot int) (item.Ref, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.open[id]
	if !ok || !c.inRange(slot) {
		return item.Ref{}, false
	}
	return c.Slots[slot], true
}

// IsOpen reports whether container id is open.
func (m *Module) IsOpen(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.open[id]
	return ok
}

// OpenIDs returns the ids of all open containers in ascending order.
func (m *Module) OpenIDs() []int {
	m.mu.RLock()
	ids := make([]int, 0, len(m.open))
	for id := range m.open {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Count returns the number of open containers.
func (m *Module) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.open)
}

func (m *Module) logger() *zap.Logger {
	if m.client == nil {
		return zap.NewNop()
	}
	return m.client.Logger
}
