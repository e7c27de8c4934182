package windows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/client/modules/containers"
	"github.com/go-mclib/containers/pkg/client/modules/interaction"
	"github.com/go-mclib/containers/pkg/item"
	"github.com/go-mclib/containers/pkg/protocol"
)

type fakeSurface struct {
	spec      Spec
	refreshes int
	destroyed int
}

func (s *fakeSurface) Refresh() { s.refreshes++ }
func (s *fakeSurface) Destroy() { s.destroyed++ }

type fakeToolkit struct {
	surfaces []*fakeSurface
}

func (tk *fakeToolkit) CreateWindow(spec Spec) Surface {
	s := &fakeSurface{spec: spec}
	tk.surfaces = append(tk.surfaces, s)
	return s
}

type session struct {
	c   *client.Client
	reg *containers.Module
	in  *interaction.Module
	win *Module
	tk  *fakeToolkit
}

func newSession(t *testing.T) *session {
	t.Helper()
	catalog, err := item.NewCatalog(
		item.Definition{ID: 3031, Name: "backpack", Container: true, Moveable: true},
		item.Definition{ID: 2160, Name: "gold coin", Moveable: true},
	)
	require.NoError(t, err)

	s := &session{c: client.New("test", nil), tk: &fakeToolkit{}}
	s.reg = containers.New()
	s.in = interaction.New(catalog)
	s.win = New(s.tk)
	s.c.Register(s.reg)
	s.c.Register(s.in)
	s.c.Register(s.win)
	require.Same(t, s.win, From(s.c))
	return s
}

func (s *session) drain() []protocol.Request {
	var out []protocol.Request
	for {
		select {
		case req := <-s.c.OutgoingRequestQueue:
			out = append(out, req)
		default:
			return out
		}
	}
}

func openEvent(id int, name string, capacity int, items map[int]item.Ref) protocol.ContainerOpen {
	return protocol.ContainerOpen{ContainerID: id, ItemTypeID: 3031, Name: name, Capacity: capacity, Items: items}
}

func TestBackpackWindow(t *testing.T) {
	s := newSession(t)
	s.c.Dispatch(openEvent(1, "Backpack", 20, nil))
	s.c.Dispatch(protocol.ItemAdd{ContainerID: 1, Slot: 0, Item: item.Ref{TypeID: 3031, Count: 1}})

	w, ok := s.win.Window(1)
	require.True(t, ok)
	assert.True(t, w.IsOpen())
	assert.Equal(t, "Backpack", w.Spec().Title)
	assert.Equal(t, 20, w.Controllers())

	slots := s.reg.SlotsView(1)
	require.Len(t, slots, 20)
	assert.Equal(t, item.Ref{TypeID: 3031, Count: 1}, slots[0])
	for i := 1; i < 20; i++ {
		assert.True(t, slots[i].IsEmpty(), "slot %d", i)
	}

	require.Len(t, s.tk.surfaces, 1)
	assert.Equal(t, 1, s.tk.surfaces[0].refreshes)
}

func TestTitleCasing(t *testing.T) {
	s := newSession(t)
	s.c.Dispatch(openEvent(2, "brown bag", 8, nil))

	w, ok := s.win.Window(2)
	require.True(t, ok)
	assert.Equal(t, "Brown Bag", w.Spec().Title)
}

func TestReopenKeepsOneWindow(t *testing.T) {
	s := newSession(t)
	s.c.Dispatch(openEvent(1, "backpack", 4, nil))
	s.c.Dispatch(openEvent(1, "backpack", 6, nil))

	assert.Equal(t, 1, s.win.Count())
	assert.Equal(t, []int{1}, s.win.IDs())
	require.Len(t, s.tk.surfaces, 2)
	assert.Equal(t, 1, s.tk.surfaces[0].destroyed)
	assert.Equal(t, 0, s.tk.surfaces[1].destroyed)
	assert.Equal(t, 1, s.reg.Subscribers(1))

	w, _ := s.win.Window(1)
	assert.Equal(t, 6, w.Controllers())

	// only the live window hears about changes
	s.c.Dispatch(protocol.ItemAdd{ContainerID: 1, Slot: 5, Item: item.Ref{TypeID: 2160, Count: 1}})
	assert.Equal(t, 0, s.tk.surfaces[0].refreshes)
	assert.Equal(t, 1, s.tk.surfaces[1].refreshes)
}

func TestUserCloseMidDragEmitsNoMove(t *testing.T) {
	s := newSession(t)
	s.c.Dispatch(openEvent(1, "backpack", 4, map[int]item.Ref{0: {TypeID: 2160, Count: 5}}))
	s.c.Dispatch(openEvent(2, "bag", 4, nil))

	require.Equal(t, interaction.OutcomePickedUp, s.win.PressSlot(1, 0, 0))
	require.True(t, s.win.Close(1))
	assert.Equal(t, []protocol.Request{protocol.CloseRequest{ContainerID: 1}}, s.drain())

	assert.Equal(t, interaction.OutcomeCancelled, s.win.DropOnSlot(2, 0, 0))
	assert.Equal(t, interaction.OutcomeCancelled, s.in.Drop(address.Ground(address.Position{X: 1}), 0))
	assert.Equal(t, interaction.OutcomeCancelled, s.win.DropOnSlot(1, 1, 0))
	assert.Empty(t, s.drain())

	// the container stays until the server confirms the close
	assert.True(t, s.reg.IsOpen(1))
	w, ok := s.win.Window(1)
	require.True(t, ok)
	assert.False(t, w.IsOpen())
	assert.Equal(t, 0, w.Controllers())
	assert.False(t, s.win.Close(1))
	assert.Equal(t, interaction.OutcomeNone, s.win.PressSlot(1, 0, 0))

	s.c.Dispatch(protocol.ContainerClose{ContainerID: 1})
	assert.Equal(t, 0, s.reg.Subscribers(1))
	_, ok = s.win.Window(1)
	assert.False(t, ok)
}

func TestReleaseOnUserClosedWindowCancels(t *testing.T) {
	s := newSession(t)
	s.c.Dispatch(openEvent(1, "backpack", 4, nil))
	s.c.Dispatch(openEvent(2, "bag", 4, map[int]item.Ref{0: {TypeID: 2160, Count: 1}}))

	bag, ok := s.win.Window(2)
	require.True(t, ok)
	src := bag.controller(0)
	require.NotNil(t, src)

	require.Equal(t, interaction.OutcomePickedUp, src.Press(0))
	require.True(t, s.win.Close(1))
	assert.Equal(t, []protocol.Request{protocol.CloseRequest{ContainerID: 1}}, s.drain())

	// the registry still holds container 1 until the server confirms
	require.True(t, s.reg.IsOpen(1))
	assert.False(t, s.in.ValidTarget(address.Container(1, 0)))
	assert.False(t, s.win.HoverSlot(1, 0))
	assert.Equal(t, interaction.OutcomeCancelled, src.Release(address.Container(1, 0), 0))
	assert.Empty(t, s.drain())

	require.Equal(t, interaction.OutcomePickedUp, src.Press(0))
	assert.Equal(t, interaction.OutcomeCancelled, s.in.Drop(address.Container(1, 2), 0))
	assert.Empty(t, s.drain())

	// once the server closes and reopens it, the container takes drops again
	s.c.Dispatch(protocol.ContainerClose{ContainerID: 1})
	s.c.Dispatch(openEvent(1, "backpack", 4, nil))
	require.Equal(t, interaction.OutcomePickedUp, src.Press(0))
	assert.Equal(t, interaction.OutcomeDroppedOnValidTarget, src.Release(address.Container(1, 0), 0))
	assert.Len(t, s.drain(), 1)
}

func TestServerCloseMidDragEmitsNothing(t *testing.T) {
	s := newSession(t)
	s.c.Dispatch(openEvent(1, "backpack", 4, map[int]item.Ref{0: {TypeID: 2160, Count: 1}}))
	s.c.Dispatch(openEvent(2, "bag", 4, nil))

	s.win.PressSlot(1, 0, 0)
	s.c.Dispatch(protocol.ContainerClose{ContainerID: 1})

	assert.Equal(t, interaction.OutcomeCancelled, s.win.DropOnSlot(2, 0, 0))
	assert.Empty(t, s.drain())
	assert.Equal(t, 1, s.tk.surfaces[0].destroyed)
}

func TestDropOnSlotMoves(t *testing.T) {
	s := newSession(t)
	s.c.Dispatch(openEvent(1, "backpack", 4, map[int]item.Ref{0: {TypeID: 2160, Count: 3}}))
	s.c.Dispatch(openEvent(2, "bag", 4, nil))

	s.win.PressSlot(1, 0, 0)
	assert.True(t, s.win.HoverSlot(2, 3))
	assert.False(t, s.win.HoverSlot(2, 9))
	assert.Equal(t, interaction.OutcomeDroppedOnValidTarget, s.win.DropOnSlot(2, 3, 0))
	assert.Equal(t, []protocol.Request{protocol.MoveRequest{
		From:       address.Container(1, 0),
		To:         address.Container(2, 3),
		ItemTypeID: 2160,
		Amount:     3,
	}}, s.drain())

	// nothing moves locally until the server says so
	assert.Equal(t, item.Ref{TypeID: 2160, Count: 3}, s.reg.SlotsView(1)[0])
	assert.True(t, s.reg.SlotsView(2)[3].IsEmpty())
}

func TestCascadeOffset(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, Offset{X: 4, Y: 2}, s.win.CascadeOffset(1))
	assert.Equal(t, Offset{X: 28, Y: 14}, s.win.CascadeOffset(7))
	assert.Equal(t, Offset{}, s.win.CascadeOffset(8))
	assert.Equal(t, s.win.CascadeOffset(3), s.win.CascadeOffset(11))

	s.c.Dispatch(openEvent(3, "bag", 1, nil))
	s.c.Dispatch(openEvent(3, "bag", 1, nil))
	require.Len(t, s.tk.surfaces, 2)
	assert.Equal(t, s.tk.surfaces[0].spec.Offset, s.tk.surfaces[1].spec.Offset)
}

func TestTeardownDestroysAll(t *testing.T) {
	s := newSession(t)
	for _, id := range []int{3, 1, 2} {
		s.c.Dispatch(openEvent(id, "bag", 2, map[int]item.Ref{0: {TypeID: 2160, Count: 1}}))
	}
	s.win.PressSlot(2, 0, 0)

	s.c.Teardown()

	assert.Equal(t, 0, s.win.Count())
	assert.Equal(t, 0, s.reg.Count())
	for _, id := range []int{1, 2, 3} {
		assert.Equal(t, 0, s.reg.Subscribers(id))
	}
	for _, surface := range s.tk.surfaces {
		assert.Equal(t, 1, surface.destroyed)
	}
	_, dragging := s.in.Drag()
	assert.False(t, dragging)
}

func TestOpenParent(t *testing.T) {
	s := newSession(t)
	s.c.Dispatch(openEvent(1, "backpack", 2, nil))
	ev := openEvent(2, "bag", 2, nil)
	ev.HasParent = true
	s.c.Dispatch(ev)

	assert.False(t, s.win.OpenParent(1))
	assert.True(t, s.win.OpenParent(2))
	assert.False(t, s.win.OpenParent(5))
	assert.Equal(t, []protocol.Request{protocol.OpenParentRequest{ContainerID: 2}}, s.drain())
}

func TestHeadlessWithoutToolkit(t *testing.T) {
	c := client.New("test", nil)
	c.Register(containers.New())
	c.Register(interaction.New(nil))
	win := New(nil)
	c.Register(win)

	c.Dispatch(openEvent(1, "backpack", 2, nil))
	c.Dispatch(protocol.ItemAdd{ContainerID: 1, Slot: 1, Item: item.Ref{TypeID: 1, Count: 1}})
	assert.Equal(t, 1, win.Count())

	c.Dispatch(protocol.ContainerClose{ContainerID: 1})
	assert.Equal(t, 0, win.Count())
}

func TestRegisterOrder(t *testing.T) {
	c := client.New("test", nil)
	assert.Panics(t, func() { c.Register(New(nil)) })
}
