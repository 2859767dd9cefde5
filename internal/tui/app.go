// Package tui is the terminal browser for clipboard history.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/clipvault/internal/flash"
	"github.com/yiblet/clipvault/internal/preview"
	"github.com/yiblet/clipvault/internal/store"
)

// PaneType represents which pane is focused
type PaneType int

const (
	LeftPane PaneType = iota
	RightPane
)

// UIMode represents the current modal state of the application
type UIMode int

const (
	NormalMode UIMode = iota
	SearchMode
	HelpMode
	NumberInputMode
	DeleteMode
)

const (
	flashDuration     = 2 * time.Second
	previewCloseDelay = 150 * time.Millisecond
)

// flashExpiredMsg fires when a flash message's timer ends
type flashExpiredMsg struct {
	epoch uint64
}

// previewClosedMsg fires when the preview close transition ends
type previewClosedMsg struct{}

// AppModel orchestrates all sub-models
type AppModel struct {
	Width       int      // Window width
	Height      int      // Window height
	LeftWidth   int      // Left pane width
	RightWidth  int      // Right pane width
	ActivePane  PaneType // Currently focused pane
	CurrentMode UIMode   // Current modal state

	// Sub-models
	LeftPane  LeftPaneModel
	RightPane RightPaneModel
	Search    SearchModel
	Modal     ModalModel

	Items         []*store.Item
	Detail        *store.ItemDetail
	Body          string
	FavoritesOnly bool

	// Number input mode for multi-digit commands like "10j"
	NumberBuffer string
	BufferPane   PaneType

	FlashMessage string

	ctx     context.Context
	source  Source
	flash   *flash.Epoch
	preview *preview.State
}

// NewAppModel creates the browser and loads the first page of history
func NewAppModel(ctx context.Context, source Source) (*AppModel, error) {
	defaultWidth := 120
	defaultHeight := 20
	defaultLeftWidth := 30
	defaultRightWidth := 88

	a := &AppModel{
		Width:       defaultWidth,
		Height:      defaultHeight,
		LeftWidth:   defaultLeftWidth,
		RightWidth:  defaultRightWidth,
		ActivePane:  LeftPane,
		CurrentMode: NormalMode,
		LeftPane:    NewLeftPaneModel(defaultLeftWidth, defaultHeight),
		RightPane:   NewRightPaneModel(defaultRightWidth, defaultHeight),
		Search:      NewSearchModel(),
		Modal:       NewModalModel(),
		ctx:         ctx,
		source:      source,
		flash:       &flash.Epoch{},
		preview:     &preview.State{},
	}

	if err := a.reload(); err != nil {
		return nil, err
	}
	if item := a.selected(); item != nil {
		a.preview.Show(item.ID)
	}
	return a, nil
}

// Init implements tea.Model
func (a *AppModel) Init() tea.Cmd {
	return nil
}

// Update handles app-level messages and routes to sub-models
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleWindowResize(m)
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	case flashExpiredMsg:
		// A newer flash replaced this one; leave it alone.
		if a.flash.Valid(m.epoch) {
			a.FlashMessage = ""
		}
		return a, nil
	case previewClosedMsg:
		a.preview.Finish()
		return a, nil
	}
	return a, nil
}

// handleWindowResize recomputes pane widths
func (a *AppModel) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	const (
		minTotalWidth = 40
		minLeftWidth  = 20
		minRightWidth = 20
		borderSpacing = 2
	)

	a.Width = max(msg.Width, minTotalWidth)
	a.Height = msg.Height

	a.LeftWidth = max(min(40, a.Width/3), minLeftWidth)
	a.RightWidth = max(a.Width-a.LeftWidth-borderSpacing, minRightWidth)

	a.LeftPane.Update(ResizeLeftPaneMsg{Width: a.LeftWidth, Height: a.Height})
	a.RightPane.Update(ResizeRightPaneMsg{Width: a.RightWidth, Height: a.Height})
	a.RightPane.Update(UpdateContentMsg{})
	return a, nil
}

// handleKeyPress dispatches on the current mode first
func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.CurrentMode {
	case SearchMode:
		return a.handleSearchModeKeys(msg)
	case HelpMode:
		return a.handleHelpModeKeys(msg.String())
	case NumberInputMode:
		return a.handleNumberInputModeKeys(msg.String())
	case DeleteMode:
		return a.handleDeleteModeKeys(msg.String())
	default:
		return a.handleNormalModeKeys(msg.String())
	}
}

// handleSearchModeKeys edits and submits the search query
func (a *AppModel) handleSearchModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyEsc:
		a.Search.Update(CancelSearchMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	case tea.KeyEnter:
		a.Search.Update(ExecuteSearchMsg{})
		a.CurrentMode = NormalMode
		a.LeftPane.Update(GoToTopMsg{})
		if err := a.reload(); err != nil {
			return a, a.setFlashMessage(fmt.Sprintf("Search failed: %v", err))
		}
		if a.Search.Query == "" {
			return a, nil
		}
		return a, a.setFlashMessage(fmt.Sprintf("%d match(es) for %q", len(a.Items), a.Search.Query))
	case tea.KeyBackspace, tea.KeyCtrlH:
		a.Search.Backspace()
		return a, nil
	case tea.KeySpace:
		a.Search.Update(UpdateSearchInputMsg{Input: a.Search.Input + " "})
		return a, nil
	case tea.KeyRunes:
		a.Search.Update(UpdateSearchInputMsg{Input: a.Search.Input + string(msg.Runes)})
		return a, nil
	}
	return a, nil
}

// handleHelpModeKeys processes keys when in help mode
func (a *AppModel) handleHelpModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "z", "esc", "q":
		a.CurrentMode = NormalMode
	}
	return a, nil
}

// handleNumberInputModeKeys processes keys when in number input mode
func (a *AppModel) handleNumberInputModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
		return a, nil
	case "backspace":
		if len(a.NumberBuffer) > 1 {
			a.NumberBuffer = a.NumberBuffer[:len(a.NumberBuffer)-1]
		} else {
			a.NumberBuffer = ""
			a.CurrentMode = NormalMode
		}
		return a, nil
	}

	if key >= "0" && key <= "9" {
		a.NumberBuffer += key
		return a, nil
	}

	multiplier := 1
	if n, err := strconv.Atoi(a.NumberBuffer); err == nil {
		multiplier = n
	}
	a.NumberBuffer = ""
	a.CurrentMode = NormalMode
	if isMovementCommand(key) {
		return a.executeCommand(multiplier, key, a.BufferPane)
	}
	return a, nil
}

// handleDeleteModeKeys processes keys when in delete confirmation mode
func (a *AppModel) handleDeleteModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "y", "Y":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode

		item := a.selected()
		if item == nil {
			return a, nil
		}
		if err := a.source.Delete(a.ctx, item.ID); err != nil {
			return a, a.setFlashMessage(fmt.Sprintf("Failed to delete item: %v", err))
		}
		if err := a.reload(); err != nil {
			return a, a.setFlashMessage(fmt.Sprintf("Failed to reload: %v", err))
		}
		return a, a.setFlashMessage("Item deleted")
	case "n", "N", "esc":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
	}
	return a, nil
}

// handleNormalModeKeys processes keys when in normal mode
func (a *AppModel) handleNormalModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "esc":
		if a.Search.Query == "" {
			return a, tea.Quit
		}
		a.Search.Update(ClearSearchMsg{})
		if err := a.reload(); err != nil {
			return a, a.setFlashMessage(fmt.Sprintf("Failed to reload: %v", err))
		}
		return a, nil
	case "z":
		a.CurrentMode = HelpMode
		return a, nil
	case "/":
		a.Search.Update(StartSearchMsg{})
		a.CurrentMode = SearchMode
		return a, nil
	case "c":
		return a, a.copySelected()
	case "f":
		return a, a.toggleFavorite()
	case "F":
		a.FavoritesOnly = !a.FavoritesOnly
		a.Search.Update(ClearSearchMsg{})
		a.LeftPane.Update(GoToTopMsg{})
		if err := a.reload(); err != nil {
			return a, a.setFlashMessage(fmt.Sprintf("Failed to reload: %v", err))
		}
		return a, nil
	case "r":
		if err := a.reload(); err != nil {
			return a, a.setFlashMessage(fmt.Sprintf("Failed to reload: %v", err))
		}
		return a, a.setFlashMessage(fmt.Sprintf("Loaded %d item(s)", len(a.Items)))
	case " ":
		return a, a.togglePreview()
	case "tab":
		if a.ActivePane == LeftPane {
			a.ActivePane = RightPane
		} else {
			a.ActivePane = LeftPane
		}
		return a, nil
	case "h", "left":
		a.ActivePane = LeftPane
		return a, nil
	case "l", "right":
		a.ActivePane = RightPane
		return a, nil
	}

	// Digits start a count; 0 only continues one
	if key >= "1" && key <= "9" {
		a.NumberBuffer = key
		a.BufferPane = a.ActivePane
		a.CurrentMode = NumberInputMode
		return a, nil
	}

	if isMovementCommand(key) {
		return a.executeCommand(1, key, a.ActivePane)
	}

	switch a.ActivePane {
	case LeftPane:
		return a.handleLeftPaneKeys(key)
	default:
		return a.handleRightPaneKeys(key)
	}
}

// handleLeftPaneKeys processes list-only keys
func (a *AppModel) handleLeftPaneKeys(key string) (tea.Model, tea.Cmd) {
	if key == "d" {
		if item := a.selected(); item != nil {
			a.CurrentMode = DeleteMode
			a.Modal.Update(ShowDeleteConfirmation(preview.Title(item, 50), a.LeftPane.Cursor))
		}
	}
	return a, nil
}

// handleRightPaneKeys processes paging keys
func (a *AppModel) handleRightPaneKeys(key string) (tea.Model, tea.Cmd) {
	maxScroll := a.maxScroll()
	switch key {
	case "ctrl+u":
		a.RightPane.Update(PageUpMsg{})
	case "ctrl+d":
		a.RightPane.Update(PageDownMsg{MaxScroll: maxScroll})
	case "ctrl+b":
		a.RightPane.Update(JumpMsg{Direction: "k", Lines: a.RightPane.availableHeight(), MaxScroll: maxScroll})
	case "ctrl+f":
		a.RightPane.Update(JumpMsg{Direction: "j", Lines: a.RightPane.availableHeight(), MaxScroll: maxScroll})
	}
	return a, nil
}

// isMovementCommand checks if a key is a movement command that can use multipliers
func isMovementCommand(key string) bool {
	switch key {
	case "up", "k", "down", "j", "g", "G":
		return true
	}
	return false
}

// executeCommand executes a movement with a count on the given pane
func (a *AppModel) executeCommand(multiplier int, key string, pane PaneType) (tea.Model, tea.Cmd) {
	if pane == LeftPane {
		maxIndex := len(a.Items) - 1
		before := a.LeftPane.Cursor
		switch key {
		case "up", "k":
			a.LeftPane.Update(JumpToIndexMsg{Index: max(a.LeftPane.Cursor-multiplier, 0), MaxIndex: maxIndex})
		case "down", "j":
			a.LeftPane.Update(JumpToIndexMsg{Index: min(a.LeftPane.Cursor+multiplier, maxIndex), MaxIndex: maxIndex})
		case "g":
			if multiplier > 1 {
				a.LeftPane.Update(JumpToIndexMsg{Index: min(multiplier-1, maxIndex), MaxIndex: maxIndex})
			} else {
				a.LeftPane.Update(GoToTopMsg{})
			}
		case "G":
			a.LeftPane.Update(GoToBottomMsg{MaxIndex: maxIndex})
		}
		if a.LeftPane.Cursor != before {
			a.selectionChanged()
		}
		return a, nil
	}

	maxScroll := a.maxScroll()
	switch key {
	case "up", "k":
		a.RightPane.Update(JumpMsg{Direction: "k", Lines: multiplier, MaxScroll: maxScroll})
	case "down", "j":
		a.RightPane.Update(JumpMsg{Direction: "j", Lines: multiplier, MaxScroll: maxScroll})
	case "g":
		if multiplier > 1 {
			a.RightPane.ViewPos = min(multiplier-1, maxScroll)
		} else {
			a.RightPane.Update(ScrollToTopMsg{})
		}
	case "G":
		a.RightPane.Update(ScrollToBottomMsg{MaxScroll: maxScroll})
	}
	return a, nil
}

func (a *AppModel) maxScroll() int {
	return getMaxScroll(a.RightPane, contentLines(a.RightPane, a.Detail, a.Body))
}

// selected returns the item under the cursor, or nil
func (a *AppModel) selected() *store.Item {
	if a.LeftPane.Cursor < 0 || a.LeftPane.Cursor >= len(a.Items) {
		return nil
	}
	return a.Items[a.LeftPane.Cursor]
}

// reload fetches the item list for the current filter and search query
func (a *AppModel) reload() error {
	var items []*store.Item
	var err error
	if a.Search.Query != "" {
		items, err = a.source.Search(a.ctx, a.Search.Query)
	} else {
		items, err = a.source.List(a.ctx, a.FavoritesOnly)
	}
	if err != nil {
		return err
	}

	a.Items = items
	if a.LeftPane.Cursor >= len(items) {
		a.LeftPane.Cursor = max(len(items)-1, 0)
	}
	a.selectionChanged()
	return nil
}

// selectionChanged loads the detail of the selected item and moves an
// open preview to it
func (a *AppModel) selectionChanged() {
	a.RightPane.Update(UpdateContentMsg{})
	a.Detail, a.Body = nil, ""

	item := a.selected()
	if item == nil {
		return
	}

	detail, err := a.source.Detail(a.ctx, item.ID)
	if err != nil {
		a.Body = fmt.Sprintf("[failed to load item: %v]", err)
		return
	}
	a.Detail = detail
	a.Body = itemBody(detail)

	if a.preview.Poll().Phase == preview.Showing {
		a.preview.Show(item.ID)
	}
}

// togglePreview opens the preview, or starts closing an open one
func (a *AppModel) togglePreview() tea.Cmd {
	if a.preview.Close() {
		return tea.Tick(previewCloseDelay, func(time.Time) tea.Msg {
			return previewClosedMsg{}
		})
	}
	if item := a.selected(); item != nil {
		a.preview.Show(item.ID)
	}
	return nil
}

// setFlashMessage shows message in the status line until it expires or
// another message replaces it
func (a *AppModel) setFlashMessage(message string) tea.Cmd {
	epoch := a.flash.Next()
	a.FlashMessage = message
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{epoch: epoch}
	})
}

// copySelected writes the selected item back to the clipboard
func (a *AppModel) copySelected() tea.Cmd {
	item := a.selected()
	if item == nil {
		return a.setFlashMessage("No item selected")
	}
	if err := a.source.Copy(a.ctx, item.ID); err != nil {
		return a.setFlashMessage(fmt.Sprintf("Copy failed: %v", err))
	}
	return a.setFlashMessage("Copied to clipboard: " + preview.Title(item, 40))
}

// toggleFavorite flips the favorite flag of the selected item
func (a *AppModel) toggleFavorite() tea.Cmd {
	item := a.selected()
	if item == nil {
		return a.setFlashMessage("No item selected")
	}
	on, err := a.source.ToggleFavorite(a.ctx, item.ID)
	if err != nil {
		return a.setFlashMessage(fmt.Sprintf("Failed to update favorite: %v", err))
	}
	if err := a.reload(); err != nil {
		return a.setFlashMessage(fmt.Sprintf("Failed to reload: %v", err))
	}
	if on {
		return a.setFlashMessage("Added to favorites")
	}
	return a.setFlashMessage("Removed from favorites")
}

// listTitle names what the left pane is showing
func (a *AppModel) listTitle() string {
	switch {
	case a.Search.Query != "":
		return fmt.Sprintf("Search: %s", a.Search.Query)
	case a.FavoritesOnly:
		return "Favorites"
	default:
		return "History"
	}
}

// View implements tea.Model
func (a *AppModel) View() string {
	view, _ := AppView(a)
	return view
}

// AppView renders the complete application
func AppView(a *AppModel) (string, error) {
	if a.Width == 0 {
		return "Initializing...", nil
	}

	if a.CurrentMode == HelpMode {
		return renderHelpView(a) + "\n\n" + renderStatusLine(a), nil
	}

	left, err := LeftPaneView(a.LeftPane, a.Items, a.listTitle(), a.ActivePane == LeftPane)
	if err != nil {
		return "", err
	}
	right, err := RightPaneView(a.RightPane, a.Detail, a.Body, a.Search.Query, a.preview.Poll().Phase, a.ActivePane == RightPane)
	if err != nil {
		return "", err
	}

	view := lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n\n" + renderStatusLine(a)
	return ModalView(a.Modal, view, a.Width, a.Height), nil
}

// renderStatusLine renders the bottom status line
func renderStatusLine(a *AppModel) string {
	style := lipgloss.NewStyle().Width(a.Width)

	if a.FlashMessage != "" {
		return style.Foreground(lipgloss.Color("10")).Render(a.FlashMessage)
	}

	var status string
	switch {
	case a.CurrentMode == SearchMode:
		status = fmt.Sprintf("/%s (Enter to search, Esc to cancel)", a.Search.Input)
	case a.CurrentMode == NumberInputMode:
		status = a.NumberBuffer
	case a.Search.Query != "":
		status = fmt.Sprintf("%d match(es) - Esc to clear search, z for help", len(a.Items))
	default:
		status = fmt.Sprintf("%d item(s) - Press z for help, q to quit", len(a.Items))
	}
	return style.Render(status)
}

// renderHelpView renders the help screen
func renderHelpView(a *AppModel) string {
	helpContent := `clipvault - Clipboard History Browser

NAVIGATION:
  j, ↓        Move down (list: next item, preview: scroll down)
  k, ↑        Move up (list: previous item, preview: scroll up)
  g           Go to top (with number: go to item/line N)
  G           Go to bottom
  #j, #k      Move N items or lines (e.g., 10j)
  Tab         Toggle between list and preview
  h, ←        Focus list
  l, →        Focus preview

PREVIEW:
  Space       Open or close the preview
  Ctrl+u/d    Half page up/down
  Ctrl+b/f    Full page up/down

HISTORY:
  /query      Search history (phrase search, 1-2 characters use substring)
  Esc         Clear search
  f           Toggle favorite (favorites are never removed by retention)
  F           Show favorites only
  c           Copy selected item to clipboard
  d           Delete selected item (list only)
  r           Reload

GLOBAL:
  z           Toggle this help screen
  q           Quit
  Ctrl+c      Force quit`

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1).
		Width(a.Width - 4).
		Render(helpContent)
}
