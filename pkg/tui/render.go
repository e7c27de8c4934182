package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/client/modules/windows"
	"github.com/go-mclib/containers/pkg/item"
)

const (
	gridColumns = 5
	cellWidth   = 12
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	windowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	focusedWindowStyle = windowStyle.
				BorderForeground(lipgloss.Color("205"))

	closingWindowStyle = windowStyle.
				BorderForeground(lipgloss.Color("241"))

	cellStyle = lipgloss.NewStyle().
			Width(cellWidth)

	cursorStyle = cellStyle.
			Reverse(true)

	sourceStyle = cellStyle.
			Foreground(lipgloss.Color("214"))

	menuItemStyle     = lipgloss.NewStyle().PaddingLeft(1)
	menuSelectedStyle = menuItemStyle.Foreground(lipgloss.Color("205")).Bold(true)
)

func helpLine() string {
	parts := make([]string, 0, len(keys.ShortHelp()))
	for _, b := range keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func (t *TUI) itemName(typeID int) string {
	if t.provider == nil {
		return fmt.Sprintf("#%d", typeID)
	}
	return t.provider.Name(typeID)
}

func (t *TUI) cellLabel(ref item.Ref) string {
	if ref.IsEmpty() {
		return "·"
	}
	name := t.itemName(ref.TypeID)
	suffix := ""
	if ref.Count > 1 {
		suffix = fmt.Sprintf(" x%d", ref.Count)
	}
	if limit := cellWidth - 1 - len(suffix); len(name) > limit {
		name = name[:max(limit, 1)]
	}
	return name + suffix
}

func (t *TUI) renderWindows() string {
	if t.windows == nil {
		return ""
	}
	ids := t.windows.IDs()
	if len(ids) == 0 {
		return helpStyle.Render("no open containers")
	}

	boxes := make([]string, 0, len(ids))
	for _, id := range ids {
		w, ok := t.windows.Window(id)
		if !ok {
			continue
		}
		boxes = append(boxes, t.renderWindow(w))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func (t *TUI) renderWindow(w *windows.Window) string {
	spec := w.Spec()
	slots := t.containers.SlotsView(spec.ContainerID)
	drag, dragging := t.interaction.Drag()

	var rows []string
	for start := 0; start < len(slots); start += gridColumns {
		end := min(start+gridColumns, len(slots))
		cells := make([]string, 0, end-start)
		for slot := start; slot < end; slot++ {
			style := cellStyle
			switch {
			case spec.ContainerID == t.focus && slot == t.cursor:
				style = cursorStyle
			case dragging && drag.Source.Equal(address.Container(spec.ContainerID, slot)):
				style = sourceStyle
			}
			cells = append(cells, style.Render(t.cellLabel(slots[slot])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	header := fmt.Sprintf("%s  [%d]", spec.Title, spec.ContainerID)
	if spec.HasParent {
		header += "  ↑parent"
	}
	style := windowStyle
	switch {
	case !w.IsOpen():
		style = closingWindowStyle
		header += "  (closing)"
	case spec.ContainerID == t.focus:
		style = focusedWindowStyle
	}

	body := lipgloss.JoinVertical(lipgloss.Left, append([]string{titleStyle.Render(header)}, rows...)...)
	return style.MarginLeft(spec.Offset.X).Render(body)
}

func (t *TUI) renderMenu() string {
	lines := make([]string, 0, len(t.menu))
	for i, a := range t.menu {
		if i == t.menuIdx {
			lines = append(lines, menuSelectedStyle.Render("> "+a.Label))
		} else {
			lines = append(lines, menuItemStyle.Render("  "+a.Label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, lines...)
}

func (t *TUI) renderDrag() string {
	if t.interaction == nil {
		return ""
	}
	drag, ok := t.interaction.Drag()
	if !ok {
		return ""
	}
	return inputStyle.Render(fmt.Sprintf("holding %s from %s", t.cellLabel(drag.Item), drag.Source))
}
