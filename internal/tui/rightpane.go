package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/clipvault/internal/preview"
	"github.com/yiblet/clipvault/internal/store"
)

// RightPaneMsg represents messages that the right pane component handles
type RightPaneMsg interface {
	isRightPaneMsg()
}

// Right pane message implementations
type ScrollToTopMsg struct{}

func (ScrollToTopMsg) isRightPaneMsg() {}

type ScrollToBottomMsg struct {
	MaxScroll int
}

func (ScrollToBottomMsg) isRightPaneMsg() {}

type PageUpMsg struct{}

func (PageUpMsg) isRightPaneMsg() {}

type PageDownMsg struct {
	MaxScroll int
}

func (PageDownMsg) isRightPaneMsg() {}

type JumpMsg struct {
	Direction string // "j" for down, "k" for up
	Lines     int
	MaxScroll int
}

func (JumpMsg) isRightPaneMsg() {}

type ResizeRightPaneMsg struct {
	Width  int
	Height int
}

func (ResizeRightPaneMsg) isRightPaneMsg() {}

type UpdateContentMsg struct{}

func (UpdateContentMsg) isRightPaneMsg() {}

// RightPaneModel holds the state for the right pane (item detail)
type RightPaneModel struct {
	Width   int // Pane width
	Height  int // Pane height
	ViewPos int // Current view position (line number)
}

// NewRightPaneModel creates a new right pane model with default values
func NewRightPaneModel(width, height int) RightPaneModel {
	return RightPaneModel{
		Width:  width,
		Height: height,
	}
}

// Update applies a right pane message
func (r *RightPaneModel) Update(msg RightPaneMsg) error {
	switch m := msg.(type) {
	case ScrollToTopMsg:
		r.ViewPos = 0
	case ScrollToBottomMsg:
		r.ViewPos = m.MaxScroll
	case PageUpMsg:
		r.ViewPos = max(r.ViewPos-r.pageSize(), 0)
	case PageDownMsg:
		r.ViewPos = min(r.ViewPos+r.pageSize(), m.MaxScroll)
	case JumpMsg:
		switch m.Direction {
		case "j":
			r.ViewPos = min(r.ViewPos+m.Lines, m.MaxScroll)
		case "k":
			r.ViewPos = max(r.ViewPos-m.Lines, 0)
		}
	case ResizeRightPaneMsg:
		r.Width = m.Width
		r.Height = m.Height
	case UpdateContentMsg:
		r.ViewPos = 0 // Reset view position when content changes
	}
	return nil
}

// pageSize is half of the visible content height
func (r RightPaneModel) pageSize() int {
	return max(r.availableHeight()/2, 1)
}

func (r RightPaneModel) availableHeight() int {
	return max(r.Height-6, 1) // borders and title
}

// contentLines lays out the metadata and wrapped body of an item
func contentLines(model RightPaneModel, detail *store.ItemDetail, body string) []string {
	if detail == nil {
		return nil
	}
	lines := metadataLines(detail)
	lines = append(lines, "")
	return append(lines, WrapText(body, model.Width-6)...)
}

// RightPaneView renders the right pane as a pure function
func RightPaneView(model RightPaneModel, detail *store.ItemDetail, body, query string, phase preview.Phase, focused bool) (string, error) {
	borderColor := "62"
	if focused {
		borderColor = "205"
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(model.Width - 2).
		Height(model.Height - 4)

	title := "Preview"
	if focused {
		title = "● " + title
	}

	var content strings.Builder
	switch {
	case phase == preview.Idle:
		content.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")
		content.WriteString("Press space to preview the selected item")
		return style.Render(content.String()), nil
	case detail == nil:
		content.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")
		content.WriteString("No item selected")
		return style.Render(content.String()), nil
	}

	lines := contentLines(model, detail, body)
	available := model.availableHeight()
	if maxScroll := getMaxScroll(model, lines); maxScroll > 0 {
		bottom := min(model.ViewPos+available, len(lines))
		title += fmt.Sprintf(" (%d-%d/%d)", model.ViewPos+1, bottom, len(lines))
	}
	content.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")

	lineStyle := lipgloss.NewStyle()
	if phase == preview.Closing {
		lineStyle = lineStyle.Faint(true)
	}

	end := min(model.ViewPos+available, len(lines))
	for i := model.ViewPos; i < end; i++ {
		line := lines[i]
		if query != "" {
			line = highlightMatches(line, query)
		}
		content.WriteString(lineStyle.Render(line) + "\n")
	}

	return style.Render(strings.TrimSuffix(content.String(), "\n")), nil
}

// highlightMatches highlights case-insensitive literal occurrences of query
func highlightMatches(line, query string) string {
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return line
	}

	matches := re.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return line
	}

	highlight := lipgloss.NewStyle().
		Background(lipgloss.Color("11")).
		Foreground(lipgloss.Color("0"))

	var out strings.Builder
	last := 0
	for _, m := range matches {
		out.WriteString(line[last:m[0]])
		out.WriteString(highlight.Render(line[m[0]:m[1]]))
		last = m[1]
	}
	out.WriteString(line[last:])
	return out.String()
}

// getMaxScroll returns the maximum scroll position (pure function)
func getMaxScroll(model RightPaneModel, lines []string) int {
	available := model.availableHeight()
	if len(lines) <= available {
		return 0
	}
	return len(lines) - available
}
