package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

// Modal message implementations
type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the state for modal dialogs
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
}

// NewModalModel creates a new modal model
func NewModalModel() ModalModel {
	return ModalModel{Width: 60}
}

// Update handles modal messages
func (m *ModalModel) Update(msg ModalMsg) error {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		m.Active = false
		m.Title = ""
		m.Content = ""
		m.Options = ""
	}
	return nil
}

// ModalView renders an active modal centered in the window, or
// backgroundView when no modal is shown
func ModalView(model ModalModel, backgroundView string, windowWidth, windowHeight int) string {
	if !model.Active {
		return backgroundView
	}

	body := lipgloss.NewStyle().Bold(true).Render(model.Title)
	if model.Content != "" {
		body += "\n\n" + model.Content
	}
	if model.Options != "" {
		body += "\n\n" + model.Options
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(1, 2).
		Width(min(model.Width, max(windowWidth-4, 10))).
		Align(lipgloss.Center).
		Render(body)

	return lipgloss.Place(windowWidth, windowHeight, lipgloss.Center, lipgloss.Center, box)
}

// ShowDeleteConfirmation creates a delete confirmation modal
func ShowDeleteConfirmation(title string, index int) ShowModalMsg {
	return ShowModalMsg{
		Title:   "Delete Item?",
		Content: fmt.Sprintf("Item %d: %s\n\nFavorites are deleted too when removed here.", index, title),
		Options: "[Y] Yes, delete    [N] No, cancel",
	}
}
