package tui

import (
	"strings"
	"testing"

	"github.com/yiblet/clipvault/internal/preview"
	"github.com/yiblet/clipvault/internal/store"
)

func TestRightPaneModel_Update(t *testing.T) {
	// Height 20 leaves 14 content lines and a page of 7
	tests := []struct {
		name  string
		start int
		msg   RightPaneMsg
		want  int
	}{
		{"scroll to top", 10, ScrollToTopMsg{}, 0},
		{"scroll to bottom", 0, ScrollToBottomMsg{MaxScroll: 30}, 30},
		{"page down", 0, PageDownMsg{MaxScroll: 30}, 7},
		{"page down clamps", 28, PageDownMsg{MaxScroll: 30}, 30},
		{"page up", 10, PageUpMsg{}, 3},
		{"page up clamps", 3, PageUpMsg{}, 0},
		{"jump down", 0, JumpMsg{Direction: "j", Lines: 5, MaxScroll: 30}, 5},
		{"jump up clamps", 2, JumpMsg{Direction: "k", Lines: 5, MaxScroll: 30}, 0},
		{"content change resets", 12, UpdateContentMsg{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := NewRightPaneModel(80, 20)
			model.ViewPos = tt.start
			if err := model.Update(tt.msg); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if model.ViewPos != tt.want {
				t.Errorf("Expected ViewPos %d, got %d", tt.want, model.ViewPos)
			}
		})
	}
}

func TestGetMaxScroll(t *testing.T) {
	model := NewRightPaneModel(80, 20)

	if got := getMaxScroll(model, make([]string, 10)); got != 0 {
		t.Errorf("Expected 0 for short content, got %d", got)
	}
	if got := getMaxScroll(model, make([]string, 50)); got != 36 {
		t.Errorf("Expected 36, got %d", got)
	}
}

func TestContentLines(t *testing.T) {
	detail := &store.ItemDetail{Item: store.Item{ContentType: store.PlainText, ContentSize: 5, IsFavorited: true}}

	lines := contentLines(NewRightPaneModel(80, 20), detail, "one\ntwo")
	if !strings.Contains(lines[0], "★ favorite") {
		t.Errorf("Expected favorite marker in %q", lines[0])
	}
	if lines[len(lines)-1] != "two" || lines[len(lines)-2] != "one" {
		t.Errorf("Expected body at the end, got %v", lines)
	}

	if contentLines(NewRightPaneModel(80, 20), nil, "body") != nil {
		t.Error("Expected no lines without an item")
	}
}

func TestRightPaneView_Phases(t *testing.T) {
	detail := &store.ItemDetail{Item: store.Item{ContentType: store.PlainText, PlainText: "clip body"}}
	model := NewRightPaneModel(80, 20)

	tests := []struct {
		name   string
		detail *store.ItemDetail
		phase  preview.Phase
		want   string
	}{
		{"idle", detail, preview.Idle, "Press space to preview"},
		{"showing", detail, preview.Showing, "clip body"},
		{"closing", detail, preview.Closing, "clip body"},
		{"no item", nil, preview.Showing, "No item selected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := RightPaneView(model, tt.detail, "clip body", "", tt.phase, false)
			if err != nil {
				t.Fatalf("RightPaneView() error = %v", err)
			}
			if !strings.Contains(view, tt.want) {
				t.Errorf("Expected view to contain %q", tt.want)
			}
		})
	}
}

func TestRightPaneView_ScrollIndicator(t *testing.T) {
	detail := &store.ItemDetail{Item: store.Item{ContentType: store.PlainText}}
	body := strings.Repeat("line\n", 49) + "line"

	view, err := RightPaneView(NewRightPaneModel(80, 20), detail, body, "", preview.Showing, true)
	if err != nil {
		t.Fatalf("RightPaneView() error = %v", err)
	}
	if !strings.Contains(view, "(1-14/53)") {
		t.Error("Expected scroll indicator (1-14/53)")
	}
}

func TestHighlightMatches(t *testing.T) {
	if got := highlightMatches("nothing here", "xyz"); got != "nothing here" {
		t.Errorf("Expected line unchanged, got %q", got)
	}
	if got := highlightMatches("a.b a+b", "a+b"); !strings.Contains(got, "a+b") {
		t.Errorf("Expected literal match preserved, got %q", got)
	}
	if got := highlightMatches("Hello hello", "HELLO"); !strings.Contains(got, "Hello") || !strings.Contains(got, "hello") {
		t.Errorf("Expected case-insensitive matches preserved, got %q", got)
	}
}
