package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/clipvault/internal/preview"
	"github.com/yiblet/clipvault/internal/store"
)

// LeftPaneMsg represents messages that the left pane component handles
type LeftPaneMsg interface {
	isLeftPaneMsg()
}

// Left pane message implementations
type GoToTopMsg struct{}

func (GoToTopMsg) isLeftPaneMsg() {}

type GoToBottomMsg struct {
	MaxIndex int
}

func (GoToBottomMsg) isLeftPaneMsg() {}

type JumpToIndexMsg struct {
	Index    int
	MaxIndex int
}

func (JumpToIndexMsg) isLeftPaneMsg() {}

type ResizeLeftPaneMsg struct {
	Width  int
	Height int
}

func (ResizeLeftPaneMsg) isLeftPaneMsg() {}

// LeftPaneModel holds the state for the left pane (item list)
type LeftPaneModel struct {
	Cursor int // Current cursor position
	Width  int // Pane width
	Height int // Pane height
}

// NewLeftPaneModel creates a new left pane model with default values
func NewLeftPaneModel(width, height int) LeftPaneModel {
	return LeftPaneModel{
		Width:  width,
		Height: height,
	}
}

// Update applies a left pane message
func (l *LeftPaneModel) Update(msg LeftPaneMsg) error {
	switch m := msg.(type) {
	case GoToTopMsg:
		l.Cursor = 0
	case GoToBottomMsg:
		if m.MaxIndex >= 0 {
			l.Cursor = m.MaxIndex
		}
	case JumpToIndexMsg:
		if m.Index >= 0 && m.Index <= m.MaxIndex {
			l.Cursor = m.Index
		}
	case ResizeLeftPaneMsg:
		l.Width = m.Width
		l.Height = m.Height
	}
	return nil
}

// visibleRows is the number of list rows that fit in the pane
func (l LeftPaneModel) visibleRows() int {
	return max(l.Height-6, 1)
}

// itemLabel is the one-line label of an item in the list
func itemLabel(item *store.Item, width int) string {
	var prefix string
	if item.IsFavorited {
		prefix = "★ "
	}
	switch item.ContentType {
	case store.RichText:
		prefix += "[rich] "
	case store.File:
		prefix += "[file] "
	}
	return prefix + preview.Title(item, max(width-len([]rune(prefix)), 1))
}

// LeftPaneView renders the left pane as a pure function
func LeftPaneView(model LeftPaneModel, items []*store.Item, title string, focused bool) (string, error) {
	borderColor := "62"
	if focused {
		borderColor = "205" // Highlight focused pane
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(model.Width).
		Height(model.Height - 4)

	var content strings.Builder
	if focused {
		title = "● " + title
	}
	content.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")

	if len(items) == 0 {
		content.WriteString("(empty)")
		return style.Render(content.String()), nil
	}

	rows := model.visibleRows()
	start := max(model.Cursor-rows+1, 0)
	end := min(start+rows, len(items))

	for i := start; i < end; i++ {
		number := fmt.Sprintf("%d. ", i)
		line := number + itemLabel(items[i], model.Width-4-len(number))

		if i == model.Cursor {
			line = lipgloss.NewStyle().
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("230")).
				Width(model.Width - 4).
				Render(line)
		}

		content.WriteString(line + "\n")
	}

	return style.Render(strings.TrimSuffix(content.String(), "\n")), nil
}
