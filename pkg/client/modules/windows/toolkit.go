package windows

// Offset is a window's cascade placement in toolkit units.
type Offset struct {
	X int
	Y int
}

// Spec describes a window to create.
type Spec struct {
	ContainerID int
	Title       string
	IconTypeID  int
	Capacity    int
	HasParent   bool
	Offset      Offset
}

// Toolkit creates window surfaces. A UI implements it; headless clients pass
// nil.
type Toolkit interface {
	CreateWindow(spec Spec) Surface
}

// Surface is one drawn window. Refresh is called after every slot change and
// state change of its window; Destroy exactly once.
type Surface interface {
	Refresh()
	Destroy()
}

type nopSurface struct{}

func (nopSurface) Refresh() {}
func (nopSurface) Destroy() {}
