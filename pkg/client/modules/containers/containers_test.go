package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/item"
	"github.com/go-mclib/containers/pkg/protocol"
)

func newModule(t *testing.T) (*client.Client, *Module) {
	t.Helper()
	c := client.New("test", nil)
	m := New()
	c.Register(m)
	require.Same(t, m, From(c))
	return c, m
}

func open(id, capacity int, items map[int]item.Ref) protocol.ContainerOpen {
	return protocol.ContainerOpen{
		ContainerID: id,
		ItemTypeID:  3031,
		Name:        "backpack",
		Capacity:    capacity,
		Items:       items,
	}
}

func TestOpenCreatesEmptySlots(t *testing.T) {
	c, m := newModule(t)
	c.Dispatch(open(1, 4, map[int]item.Ref{
		0:  {TypeID: 3031, Count: 7},
		2:  {TypeID: 2160, Count: 1},
		9:  {TypeID: 1, Count: 1},
		-1: {TypeID: 1, Count: 1},
		3:  {TypeID: 5, Count: 0},
	}))

	got, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, 4, got.Capacity)
	assert.Equal(t, []item.Ref{
		{TypeID: 3031, Count: 7},
		{},
		{TypeID: 2160, Count: 1},
		{},
	}, got.Slots)
	assert.Equal(t, 2, got.Used())
}

func TestNegativeCapacityDropped(t *testing.T) {
	c, m := newModule(t)
	c.Dispatch(open(1, -1, nil))
	assert.False(t, m.IsOpen(1))
	assert.Equal(t, 0, m.Count())
}

func TestUnknownIDs(t *testing.T) {
	_, m := newModule(t)

	_, ok := m.Get(42)
	assert.False(t, ok)
	assert.Nil(t, m.SlotsView(42))
	_, ok = m.Slot(42, 0)
	assert.False(t, ok)
	assert.Empty(t, m.OpenIDs())
}

func TestSnapshotsAreCopies(t *testing.T) {
	c, m := newModule(t)
	c.Dispatch(open(1, 2, map[int]item.Ref{0: {TypeID: 1, Count: 1}}))

	view := m.SlotsView(1)
	view[0] = item.Ref{TypeID: 99, Count: 99}
	got, _ := m.Get(1)
	got.Slots[1] = item.Ref{TypeID: 99, Count: 99}

	ref, ok := m.Slot(1, 0)
	require.True(t, ok)
	assert.Equal(t, item.Ref{TypeID: 1, Count: 1}, ref)
	ref, ok = m.Slot(1, 1)
	require.True(t, ok)
	assert.True(t, ref.IsEmpty())
}

func TestBackpackScenario(t *testing.T) {
	c, m := newModule(t)

	var changes []Change
	c.Dispatch(open(1, 20, map[int]item.Ref{0: {TypeID: 3031, Count: 7}}))
	sub := m.Subscribe(1, func(ch Change) { changes = append(changes, ch) })

	c.Dispatch(protocol.ItemUpdate{ContainerID: 1, Slot: 0, Item: item.Ref{TypeID: 3031, Count: 4}})
	c.Dispatch(protocol.ItemAdd{ContainerID: 1, Slot: 5, Item: item.Ref{TypeID: 3031, Count: 3}})

	slots := m.SlotsView(1)
	assert.Equal(t, item.Ref{TypeID: 3031, Count: 4}, slots[0])
	assert.Equal(t, item.Ref{TypeID: 3031, Count: 3}, slots[5])
	assert.Equal(t, []Change{
		{ContainerID: 1, Slot: 0, Item: item.Ref{TypeID: 3031, Count: 4}},
		{ContainerID: 1, Slot: 5, Item: item.Ref{TypeID: 3031, Count: 3}},
	}, changes)

	sub.Release()
	sub.Release()
	assert.Equal(t, 0, m.Subscribers(1))
}

func TestStaleEventsDropped(t *testing.T) {
	c, m := newModule(t)
	c.Dispatch(open(1, 2, nil))

	var notified int
	m.Subscribe(1, func(Change) { notified++ })

	c.Dispatch(protocol.ItemAdd{ContainerID: 2, Slot: 0, Item: item.Ref{TypeID: 1, Count: 1}})
	c.Dispatch(protocol.ItemAdd{ContainerID: 1, Slot: 2, Item: item.Ref{TypeID: 1, Count: 1}})
	c.Dispatch(protocol.ItemAdd{ContainerID: 1, Slot: -1, Item: item.Ref{TypeID: 1, Count: 1}})
	c.Dispatch(protocol.ItemUpdate{ContainerID: 1, Slot: 0, Item: item.Ref{TypeID: 1}})
	c.Dispatch(protocol.ItemRemove{ContainerID: 3, Slot: 0})

	assert.Equal(t, make([]item.Ref, 2), m.SlotsView(1))
	assert.Equal(t, 0, notified)
	assert.Equal(t, []int{1}, m.OpenIDs())
}

func TestRemoveEmptySlotIsNoop(t *testing.T) {
	c, m := newModule(t)
	c.Dispatch(open(1, 3, map[int]item.Ref{1: {TypeID: 8, Count: 2}}))

	var changes []Change
	m.Subscribe(1, func(ch Change) { changes = append(changes, ch) })

	c.Dispatch(protocol.ItemRemove{ContainerID: 1, Slot: 0})
	assert.Empty(t, changes)

	c.Dispatch(protocol.ItemRemove{ContainerID: 1, Slot: 1})
	c.Dispatch(protocol.ItemRemove{ContainerID: 1, Slot: 1})
	assert.Equal(t, []Change{{ContainerID: 1, Slot: 1}}, changes)
	assert.Equal(t, make([]item.Ref, 3), m.SlotsView(1))
}

func TestReopenReplacesState(t *testing.T) {
	c, m := newModule(t)

	var events []string
	m.OnOpen(func(ct Container) { events = append(events, "open") })
	m.OnClose(func(id int) { events = append(events, "close") })

	c.Dispatch(open(7, 4, map[int]item.Ref{3: {TypeID: 1, Count: 1}}))
	var stale int
	m.Subscribe(7, func(Change) { stale++ })

	c.Dispatch(open(7, 6, nil))

	got, ok := m.Get(7)
	require.True(t, ok)
	assert.Equal(t, 6, got.Capacity)
	assert.Equal(t, make([]item.Ref, 6), got.Slots)
	assert.Equal(t, []string{"open", "close", "open"}, events)
	assert.Equal(t, 0, m.Subscribers(7))

	c.Dispatch(protocol.ItemAdd{ContainerID: 7, Slot: 5, Item: item.Ref{TypeID: 2, Count: 1}})
	assert.Equal(t, 0, stale)
}

func TestCloseReleasesSubscriptions(t *testing.T) {
	c, m := newModule(t)
	c.Dispatch(open(1, 2, nil))
	sub := m.Subscribe(1, func(Change) {})

	var closed []int
	m.OnClose(func(id int) { closed = append(closed, id) })

	c.Dispatch(protocol.ContainerClose{ContainerID: 1})
	c.Dispatch(protocol.ContainerClose{ContainerID: 1})

	assert.False(t, m.IsOpen(1))
	assert.Equal(t, []int{1}, closed)
	assert.Equal(t, 0, m.Subscribers(1))
	assert.NotPanics(t, sub.Release)
}

func TestResetClosesInOrder(t *testing.T) {
	c, m := newModule(t)
	for _, id := range []int{5, 1, 3} {
		c.Dispatch(open(id, 1, nil))
	}

	var closed []int
	m.OnClose(func(id int) { closed = append(closed, id) })

	c.Teardown()
	assert.Equal(t, []int{1, 3, 5}, closed)
	assert.Equal(t, 0, m.Count())
}

func TestSlotCountMatchesCapacity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := New()
		ids := rapid.IntRange(0, 3)
		slots := rapid.IntRange(-2, 12)

		n := rapid.IntRange(1, 60).Draw(t, "n")
		for i := 0; i < n; i++ {
			id := ids.Draw(t, "id")
			switch rapid.IntRange(0, 4).Draw(t, "kind") {
			case 0:
				m.HandleEvent(open(id, rapid.IntRange(-1, 10).Draw(t, "capacity"), map[int]item.Ref{
					slots.Draw(t, "initial"): {TypeID: 1, Count: rapid.IntRange(0, 5).Draw(t, "count")},
				}))
			case 1:
				m.HandleEvent(protocol.ContainerClose{ContainerID: id})
			case 2:
				m.HandleEvent(protocol.ItemAdd{ContainerID: id, Slot: slots.Draw(t, "slot"),
					Item: item.Ref{TypeID: 2, Count: rapid.IntRange(0, 5).Draw(t, "count")}})
			case 3:
				m.HandleEvent(protocol.ItemUpdate{ContainerID: id, Slot: slots.Draw(t, "slot"),
					Item: item.Ref{TypeID: 3, Count: rapid.IntRange(0, 5).Draw(t, "count")}})
			case 4:
				m.HandleEvent(protocol.ItemRemove{ContainerID: id, Slot: slots.Draw(t, "slot")})
			}

			for _, openID := range m.OpenIDs() {
				ct, ok := m.Get(openID)
				if !ok {
					t.Fatalf("container %d listed but not found", openID)
				}
				if len(ct.Slots) != ct.Capacity {
					t.Fatalf("container %d: %d slots, capacity %d", openID, len(ct.Slots), ct.Capacity)
				}
				for slot, ref := range ct.Slots {
					if ref.Count < 0 || (ref.Count == 0 && ref.TypeID != 0) {
						t.Fatalf("container %d slot %d holds %v", openID, slot, ref)
					}
				}
			}
		}
	})
}

func TestEventOrderMatters(t *testing.T) {
	add := protocol.ItemAdd{ContainerID: 1, Slot: 0, Item: item.Ref{TypeID: 1, Count: 1}}
	remove := protocol.ItemRemove{ContainerID: 1, Slot: 0}

	_, a := newModule(t)
	a.HandleEvent(open(1, 1, nil))
	a.HandleEvent(add)
	a.HandleEvent(remove)

	_, b := newModule(t)
	b.HandleEvent(open(1, 1, nil))
	b.HandleEvent(remove)
	b.HandleEvent(add)

	assert.Equal(t, []item.Ref{{}}, a.SlotsView(1))
	assert.Equal(t, []item.Ref{{TypeID: 1, Count: 1}}, b.SlotsView(1))
}

func TestAddUpdateRemoveSequence(t *testing.T) {
	_, m := newModule(t)
	m.HandleEvent(open(1, 4, nil))

	var changes []Change
	sub := m.Subscribe(1, func(ch Change) { changes = append(changes, ch) })
	defer sub.Release()

	a := item.Ref{TypeID: 10, Count: 1}
	b := item.Ref{TypeID: 11, Count: 3}

	m.HandleEvent(protocol.ItemAdd{ContainerID: 1, Slot: 2, Item: a})
	got, _ := m.Slot(1, 2)
	assert.Equal(t, a, got)

	m.HandleEvent(protocol.ItemUpdate{ContainerID: 1, Slot: 2, Item: b})
	got, _ = m.Slot(1, 2)
	assert.Equal(t, b, got)

	m.HandleEvent(protocol.ItemRemove{ContainerID: 1, Slot: 2})
	got, ok := m.Slot(1, 2)
	assert.True(t, ok)
	assert.True(t, got.IsEmpty())

	assert.Equal(t, []Change{
		{ContainerID: 1, Slot: 2, Item: a},
		{ContainerID: 1, Slot: 2, Item: b},
		{ContainerID: 1, Slot: 2},
	}, changes)
	assert.Equal(t, make([]item.Ref, 4), m.SlotsView(1))
}
