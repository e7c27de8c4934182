// Package windows binds one window to every open container.
//
// A window is created when its container opens and destroyed when the
// container closes, is replaced, or the session ends. While it lives it
// holds a change subscription and one slot controller per slot.
package windows

import (
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/client/modules/containers"
	"github.com/go-mclib/containers/pkg/client/modules/interaction"
	"github.com/go-mclib/containers/pkg/protocol"
)

const ModuleName = "windows"

const (
	DefaultStepX = 4
	DefaultStepY = 2

	cascadeSlots = 8
)

type Module struct {
	client      *client.Client
	toolkit     Toolkit
	containers  *containers.Module
	interaction *interaction.Module

	// StepX and StepY set the cascade spacing. Change them before the first
	// container opens.
	StepX int
	StepY int

	mu      sync.RWMutex
	windows map[int]*Window
	title   cases.Caser
}

// New creates the windows module. Register it after containers and
// interaction.
func New(tk Toolkit) *Module {
	return &Module{
		toolkit: tk,
		StepX:   DefaultStepX,
		StepY:   DefaultStepY,
		windows: make(map[int]*Window),
		title:   cases.Title(language.English),
	}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) {
	m.client = c
	m.containers = containers.From(c)
	m.interaction = interaction.From(c)
	if m.containers == nil || m.interaction == nil {
		panic("windows: containers and interaction modules must be registered first")
	}
	m.containers.OnOpen(m.create)
	m.containers.OnClose(func(id int) { m.destroy(id) })
	m.interaction.OnStateChange(m.refreshAll)
}

func (m *Module) HandleEvent(protocol.Event) {}

// Reset destroys every remaining window.
func (m *Module) Reset() {
	for _, id := range m.IDs() {
		m.destroy(id)
	}
}

func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// CascadeOffset places window id so that windows opened together do not
// stack exactly on top of each other.
func (m *Module) CascadeOffset(id int) Offset {
	n := ((id % cascadeSlots) + cascadeSlots) % cascadeSlots
	return Offset{X: n * m.StepX, Y: n * m.StepY}
}

func (m *Module) create(ct containers.Container) {
	// a replaced container has already fired its close hook; this only
	// guards against a hook registered out of order
	m.destroy(ct.ID)

	spec := Spec{
		ContainerID: ct.ID,
		Title:       m.title.String(ct.Name),
		IconTypeID:  ct.IconTypeID,
		Capacity:    ct.Capacity,
		HasParent:   ct.HasParent,
		Offset:      m.CascadeOffset(ct.ID),
	}

	var surface Surface = nopSurface{}
	if m.toolkit != nil {
		if s := m.toolkit.CreateWindow(spec); s != nil {
			surface = s
		}
	}

	w := &Window{
		spec:        spec,
		surface:     surface,
		controllers: make([]*interaction.SlotController, ct.Capacity),
		open:        true,
	}
	for slot := range w.controllers {
		w.controllers[slot] = m.interaction.NewSlotController(address.Container(ct.ID, slot))
	}
	w.sub = m.containers.Subscribe(ct.ID, func(containers.Change) { surface.Refresh() })

	m.mu.Lock()
	m.windows[ct.ID] = w
	m.mu.Unlock()

	m.logger().Debug("windows: created", zap.Int("container", ct.ID), zap.String("title", spec.Title))
}

// destroy tears window id down: subscription, intents, controllers, surface.
func (m *Module) destroy(id int) {
	m.mu.Lock()
	w, ok := m.windows[id]
	if ok {
		delete(m.windows, id)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	defer w.sub.Release()

	m.interaction.ClearClosing(id)
	m.interaction.CancelFor(id)
	w.teardownControllers()
	w.surface.Destroy()

	m.logger().Debug("windows: destroyed", zap.Int("container", id))
}

// Close handles the user closing window id. It asks the server to close the
// container and stops all interaction with it; the container itself goes
// away when the server confirms.
func (m *Module) Close(id int) bool {
	w, ok := m.openWindow(id)
	if !ok {
		return false
	}
	m.interaction.RequestClose(id)
	m.interaction.MarkClosing(id)
	m.interaction.CancelFor(id)
	w.teardownControllers()
	w.surface.Refresh()
	return true
}

// OpenParent asks the server to open the container holding container id.
func (m *Module) OpenParent(id int) bool {
	w, ok := m.Window(id)
	if !ok || !w.IsOpen() || !w.spec.HasParent {
		return false
	}
	m.interaction.RequestOpenParent(id)
	return true
}

// PressSlot presses a slot of window id.
func (m *Module) PressSlot(id, slot int, mods interaction.Modifiers) interaction.Outcome {
	sc := m.controller(id, slot)
	if sc == nil {
		return interaction.OutcomeNone
	}
	return sc.Press(mods)
}

// HoverSlot moves the current drag over a slot of window id.
func (m *Module) HoverSlot(id, slot int) bool {
	if _, ok := m.openWindow(id); !ok {
		return false
	}
	drag, ok := m.interaction.Drag()
	if !ok {
		return false
	}
	target := address.Container(id, slot)
	if drag.Source.Kind == address.KindContainer {
		if src := m.controller(drag.Source.ContainerID, drag.Source.Slot); src != nil {
			src.Hover(target)
		}
	}
	return m.interaction.ValidTarget(target)
}

// DropOnSlot ends the current drag on a slot of window id. Dropping on a
// closed or missing window cancels the drag.
func (m *Module) DropOnSlot(id, slot int, mods interaction.Modifiers) interaction.Outcome {
	if _, ok := m.openWindow(id); !ok {
		m.interaction.CancelDrag()
		return interaction.OutcomeCancelled
	}
	return m.interaction.Drop(address.Container(id, slot), mods)
}

// Menu returns the context menu for a slot of window id.
func (m *Module) Menu(id, slot int) []interaction.Action {
	sc := m.controller(id, slot)
	if sc == nil {
		return nil
	}
	return sc.RightClick()
}

// Window returns window id. Closed windows are returned until the server
// closes their container.
func (m *Module) Window(id int) (*Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[id]
	return w, ok
}

// IDs returns the container ids that have a window, ascending.
func (m *Module) IDs() []int {
	m.mu.RLock()
	ids := make([]int, 0, len(m.windows))
	for id := range m.windows {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (m *Module) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.windows)
}

func (m *Module) openWindow(id int) (*Window, bool) {
	w, ok := m.Window(id)
	if !ok || !w.IsOpen() {
		return nil, false
	}
	return w, true
}

func (m *Module) controller(id, slot int) *interaction.SlotController {
	w, ok := m.openWindow(id)
	if !ok {
		return nil
	}
	return w.controller(slot)
}

func (m *Module) refreshAll() {
	m.mu.RLock()
	surfaces := make([]Surface, 0, len(m.windows))
	for _, w := range m.windows {
		surfaces = append(surfaces, w.surface)
	}
	m.mu.RUnlock()
	for _, s := range surfaces {
		s.Refresh()
	}
}

func (m *Module) logger() *zap.Logger {
	if m.client == nil {
		return zap.NewNop()
	}
	return m.client.Logger
}
