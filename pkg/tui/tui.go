// Package tui is the interactive terminal front end: one box per open
// container, a log pane, and the quantity dialog. It implements
// windows.Toolkit.
//
// The model runs on the bubbletea goroutine. It only reads session state;
// every action is posted to the client's dispatch loop with Client.Do.
package tui

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/client/modules/containers"
	"github.com/go-mclib/containers/pkg/client/modules/interaction"
	"github.com/go-mclib/containers/pkg/client/modules/windows"
	"github.com/go-mclib/containers/pkg/item"
)

// TUI represents the terminal user interface for interactive mode
type TUI struct {
	client      *client.Client
	containers  *containers.Module
	interaction *interaction.Module
	windows     *windows.Module
	provider    item.Provider

	program        *tea.Program
	refreshPending atomic.Bool

	viewport  viewport.Model
	textInput textinput.Model
	logs      []string
	logMutex  sync.Mutex
	maxLogs   int
	ready     bool
	width     int
	height    int

	focus  int // container id of the focused window
	cursor int // slot index in the focused window

	menu     []interaction.Action
	menuIdx  int
	dialogOn bool

	// GroundTile is where the ground key drops the dragged item. Sessions
	// carry no player position, so it comes from configuration.
	GroundTile address.Position
}

// New creates a TUI. Bind it to a client once the client's modules are
// registered.
func New(provider item.Provider, maxLogLines int) *TUI {
	ti := textinput.New()
	ti.Placeholder = "amount"
	ti.CharLimit = 9
	ti.Width = 12
	ti.Blur()

	return &TUI{
		provider:  provider,
		textInput: ti,
		maxLogs:   maxLogLines,
		focus:     -1,
	}
}

// Bind attaches the TUI to c, whose containers, interaction and windows
// modules must already be registered.
func (t *TUI) Bind(c *client.Client) {
	t.client = c
	t.containers = containers.From(c)
	t.interaction = interaction.From(c)
	t.windows = windows.From(c)
}

// Init initializes the TUI
func (t *TUI) Init() tea.Cmd {
	return textinput.Blink
}

// do posts fn to the client's dispatch loop.
func (t *TUI) do(fn func()) {
	if t.client != nil {
		t.client.Do(fn)
	}
}

// Update handles TUI updates
func (t *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			if t.client != nil {
				_ = t.client.Disconnect(true)
			}
			return t, tea.Quit
		}
		switch {
		case t.dialogOn:
			return t, t.updateDialog(msg)
		case t.menu != nil:
			t.updateMenu(msg)
			return t, nil
		default:
			t.updateWindows(msg)
			return t, nil
		}

	case tea.WindowSizeMsg:
		logHeight := max(msg.Height/3, 3)
		if !t.ready {
			t.viewport = viewport.New(msg.Width, logHeight)
			t.viewport.SetContent(t.renderLogs())
			t.ready = true
		} else {
			t.viewport.Width = msg.Width
			t.viewport.Height = logHeight
		}
		t.width = msg.Width
		t.height = msg.Height

	case LogMsg:
		t.AddLog(string(msg))
		if t.ready {
			// do not scroll if not at bottom, to prevent flickering
			wasAtBottom := t.viewport.AtBottom()
			t.viewport.SetContent(t.renderLogs())
			if wasAtBottom {
				t.viewport.GotoBottom()
			}
		}
		return t, nil

	case RefreshMsg:
		t.refreshPending.Store(false)
		t.syncFocus()
		if cmd := t.syncDialog(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case WindowClosedMsg:
		if t.focus == msg.ContainerID {
			t.menu = nil
		}
		t.syncFocus()
		t.syncDialog()
	}

	if t.ready {
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return t, tea.Batch(cmds...)
}

func (t *TUI) windowIDs() []int {
	if t.windows == nil {
		return nil
	}
	return t.windows.IDs()
}

// syncFocus keeps the focus on an existing window and the cursor in range.
func (t *TUI) syncFocus() {
	ids := t.windowIDs()
	if len(ids) == 0 {
		t.focus, t.cursor = -1, 0
		return
	}
	if !slices.Contains(ids, t.focus) {
		t.focus, t.cursor = ids[0], 0
	}
	if w, ok := t.windows.Window(t.focus); ok {
		if capacity := w.Spec().Capacity; t.cursor >= capacity {
			t.cursor = max(capacity-1, 0)
		}
	}
}

// syncDialog opens or closes the quantity dialog to match the pending
// transfer.
func (t *TUI) syncDialog() tea.Cmd {
	if t.interaction == nil {
		return nil
	}
	pending, ok := t.interaction.Pending()
	switch {
	case ok && !t.dialogOn:
		t.dialogOn = true
		t.menu = nil
		t.textInput.SetValue(fmt.Sprint(pending.Amount))
		t.textInput.CursorEnd()
		return t.textInput.Focus()
	case !ok && t.dialogOn:
		t.dialogOn = false
		t.textInput.Blur()
		t.textInput.SetValue("")
	}
	return nil
}

func (t *TUI) updateDialog(msg tea.KeyMsg) tea.Cmd {
	in := t.interaction
	switch {
	case key.Matches(msg, keys.Cancel):
		t.do(in.CancelTransfer)
		return nil
	case msg.Type == tea.KeyEnter:
		text := t.textInput.Value()
		t.do(func() {
			in.SetInput(text)
			in.Confirm()
		})
		return nil
	case msg.Type == tea.KeyUp:
		t.do(func() { in.Increment() })
		t.bumpInput(+1)
		return nil
	case msg.Type == tea.KeyDown:
		t.do(func() { in.Decrement() })
		t.bumpInput(-1)
		return nil
	}

	var cmd tea.Cmd
	t.textInput, cmd = t.textInput.Update(msg)
	text := t.textInput.Value()
	t.do(func() { in.SetInput(text) })
	return cmd
}

// bumpInput mirrors Increment/Decrement in the text field.
func (t *TUI) bumpInput(delta int) {
	pending, ok := t.interaction.Pending()
	if !ok {
		return
	}
	n := interaction.ClampAmount(t.textInput.Value(), pending.Max)
	t.textInput.SetValue(fmt.Sprint(interaction.ClampAmount(fmt.Sprint(n+delta), pending.Max)))
}

func (t *TUI) updateMenu(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Menu):
		t.menu = nil
	case key.Matches(msg, keys.Up):
		t.menuIdx = (t.menuIdx + len(t.menu) - 1) % len(t.menu)
	case key.Matches(msg, keys.Down):
		t.menuIdx = (t.menuIdx + 1) % len(t.menu)
	case key.Matches(msg, keys.Press):
		cmd := t.menu[t.menuIdx].Command
		t.menu = nil
		in := t.interaction
		t.do(func() { in.Execute(cmd) })
	}
}

func (t *TUI) updateWindows(msg tea.KeyMsg) {
	if t.windows == nil {
		return
	}
	ids := t.windowIDs()
	id, slot := t.focus, t.cursor
	win, in := t.windows, t.interaction

	switch {
	case key.Matches(msg, keys.NextWindow), key.Matches(msg, keys.PrevWindow):
		if len(ids) == 0 {
			return
		}
		step := 1
		if key.Matches(msg, keys.PrevWindow) {
			step = len(ids) - 1
		}
		i := slices.Index(ids, t.focus)
		t.focus = ids[(i+step)%len(ids)]
		t.cursor = 0
		t.syncFocus()
		t.hover()
	case key.Matches(msg, keys.Up):
		t.moveCursor(-gridColumns)
	case key.Matches(msg, keys.Down):
		t.moveCursor(gridColumns)
	case key.Matches(msg, keys.Left):
		t.moveCursor(-1)
	case key.Matches(msg, keys.Right):
		t.moveCursor(1)
	case key.Matches(msg, keys.Press):
		t.do(func() {
			if _, dragging := in.Drag(); dragging {
				win.DropOnSlot(id, slot, 0)
				return
			}
			win.PressSlot(id, slot, 0)
		})
	case key.Matches(msg, keys.Split):
		t.do(func() { win.DropOnSlot(id, slot, interaction.ModQuantity) })
	case key.Matches(msg, keys.Use):
		t.do(func() { win.PressSlot(id, slot, interaction.ModUse) })
	case key.Matches(msg, keys.Ground):
		target := t.groundTarget()
		t.do(func() { in.Drop(target, 0) })
	case key.Matches(msg, keys.Menu):
		if actions := win.Menu(id, slot); len(actions) > 0 {
			t.menu, t.menuIdx = actions, 0
		}
	case key.Matches(msg, keys.Close):
		t.do(func() { win.Close(id) })
	case key.Matches(msg, keys.Parent):
		t.do(func() { win.OpenParent(id) })
	case key.Matches(msg, keys.Cancel):
		t.do(in.CancelDrag)
	}
}

func (t *TUI) groundTarget() address.Address {
	return address.Ground(t.GroundTile)
}

func (t *TUI) moveCursor(delta int) {
	w, ok := t.windows.Window(t.focus)
	if !ok {
		return
	}
	if next := t.cursor + delta; next >= 0 && next < w.Spec().Capacity {
		t.cursor = next
		t.hover()
	}
}

// hover shows the drag over the cursor slot.
func (t *TUI) hover() {
	id, slot, win := t.focus, t.cursor, t.windows
	t.do(func() { win.HoverSlot(id, slot) })
}

// View renders the TUI
func (t *TUI) View() string {
	if !t.ready {
		return "Initializing..."
	}

	addr := ""
	if t.client != nil {
		addr = t.client.Address
	}
	title := titleStyle.Render(fmt.Sprintf("Containers - %s", addr))

	var status string
	switch {
	case t.dialogOn:
		status = inputStyle.Render("Amount: "+t.textInput.View()) + helpStyle.Render("  enter: confirm • up/down: adjust • esc: cancel")
	case t.menu != nil:
		status = t.renderMenu()
	default:
		status = t.renderDrag()
	}

	return strings.Join([]string{
		title,
		t.renderWindows(),
		t.viewport.View(),
		status,
		helpStyle.Render(helpLine()),
	}, "\n")
}

// AddLog adds a log message to the TUI
func (t *TUI) AddLog(msg string) {
	t.logMutex.Lock()
	defer t.logMutex.Unlock()
	t.logs = append(t.logs, msg)

	// trim logs
	if t.maxLogs > 0 && len(t.logs) > t.maxLogs {
		t.logs = t.logs[len(t.logs)-t.maxLogs:]
	}
}

func (t *TUI) renderLogs() string {
	t.logMutex.Lock()
	defer t.logMutex.Unlock()
	return strings.Join(t.logs, "\n")
}

// LogMsg is a message type for logging
type LogMsg string

// Writer is an io.Writer that sends output to the TUI
type Writer struct {
	program *tea.Program
}

// NewWriter creates a new TUI Writer
func NewWriter(program *tea.Program) *Writer {
	return &Writer{program: program}
}

// Write implements io.Writer
func (w *Writer) Write(p []byte) (n int, err error) {
	msg := strings.TrimSuffix(string(p), "\n")
	if msg != "" {
		w.program.Send(LogMsg(msg))
	}
	return len(p), nil
}

// Start creates the program for t, returning it and a writer for logging.
func Start(t *TUI) (*tea.Program, io.Writer) {
	p := tea.NewProgram(t, tea.WithAltScreen())
	t.program = p
	return p, NewWriter(p)
}
