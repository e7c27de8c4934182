package windows

import (
	"sync"

	"github.com/go-mclib/containers/pkg/client/modules/containers"
	"github.com/go-mclib/containers/pkg/client/modules/interaction"
)

// Window is the UI binding of one open container.
type Window struct {
	spec    Spec
	surface Surface
	sub     *containers.Subscription

	mu          sync.RWMutex
	controllers []*interaction.SlotController
	open        bool
}

func (w *Window) ID() int    { return w.spec.ContainerID }
func (w *Window) Spec() Spec { return w.spec }

// IsOpen is false once the user closed the window and the server has not yet
// closed the container.
func (w *Window) IsOpen() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.open
}

func (w *Window) controller(slot int) *interaction.SlotController {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if slot < 0 || slot >= len(w.controllers) {
		return nil
	}
	return w.controllers[slot]
}

// Controllers returns the number of live slot controllers.
func (w *Window) Controllers() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.controllers)
}

func (w *Window) teardownControllers() {
	w.mu.Lock()
	ctrls := w.controllers
	w.controllers = nil
	w.open = false
	w.mu.Unlock()
	for _, sc := range ctrls {
		sc.Teardown()
	}
}
