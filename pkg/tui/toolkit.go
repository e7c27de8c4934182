package tui

import (
	"github.com/go-mclib/containers/pkg/client/modules/windows"
)

// RefreshMsg asks the model to redraw from the registry.
type RefreshMsg struct{}

// WindowClosedMsg reports a destroyed window surface.
type WindowClosedMsg struct {
	ContainerID int
}

type surface struct {
	t  *TUI
	id int
}

func (s *surface) Refresh() { s.t.requestRefresh() }
func (s *surface) Destroy() { s.t.send(WindowClosedMsg{ContainerID: s.id}) }

// CreateWindow implements windows.Toolkit.
func (t *TUI) CreateWindow(spec windows.Spec) windows.Surface {
	t.requestRefresh()
	return &surface{t: t, id: spec.ContainerID}
}

// requestRefresh coalesces redraws: at most one RefreshMsg is in flight.
func (t *TUI) requestRefresh() {
	if t.program != nil && t.refreshPending.CompareAndSwap(false, true) {
		t.send(RefreshMsg{})
	}
}

// send posts msg to the program without blocking the caller, which is
// usually the client's dispatch loop.
func (t *TUI) send(msg any) {
	p := t.program
	if p == nil {
		return
	}
	go p.Send(msg)
}
