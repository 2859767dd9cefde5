package tui

import (
	"strings"
	"testing"
)

func TestModalModel_ShowHide(t *testing.T) {
	model := NewModalModel()

	if err := model.Update(ShowDeleteConfirmation("hello", 3)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !model.Active {
		t.Fatal("Expected modal active")
	}
	if !strings.Contains(model.Content, "Item 3: hello") {
		t.Errorf("Expected item in content, got %q", model.Content)
	}

	model.Update(HideModalMsg{})
	if model.Active || model.Title != "" {
		t.Errorf("Expected modal reset, got %+v", model)
	}
}

func TestModalView(t *testing.T) {
	model := NewModalModel()

	if got := ModalView(model, "background", 80, 24); got != "background" {
		t.Errorf("Expected background when inactive, got %q", got)
	}

	model.Update(ShowDeleteConfirmation("hello", 0))
	view := ModalView(model, "background", 80, 24)
	if !strings.Contains(view, "Delete Item?") {
		t.Error("Expected modal title")
	}
	if !strings.Contains(view, "[Y] Yes, delete") {
		t.Error("Expected modal options")
	}
}
