package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	NextWindow key.Binding
	PrevWindow key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Press      key.Binding
	Use        key.Binding
	Split      key.Binding
	Ground     key.Binding
	Menu       key.Binding
	Close      key.Binding
	Parent     key.Binding
	Cancel     key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	NextWindow: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next window")),
	PrevWindow: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev window")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/left", "left")),
	Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/right", "right")),
	Press:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pick up/drop")),
	Use:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "use")),
	Split:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "drop part")),
	Ground:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "drop on ground tile")),
	Menu:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
	Close:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close window")),
	Parent:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "open parent")),
	Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextWindow, k.Press, k.Use, k.Split, k.Ground, k.Menu, k.Close, k.Parent, k.Cancel, k.Quit}
}
