package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/alexflint/go-arg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yiblet/clipvault/internal/datafs"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/dbstore"
	"github.com/yiblet/clipvault/internal/tui"
)

type layoutArgs struct {
	DataDir string `arg:"positional,required" help:"data directory to render, e.g. one seeded by cmd/demo"`
	Width   int    `arg:"--width" default:"120"`
	Height  int    `arg:"--height" default:"20"`
}

// readOnlySource renders a store without changing it
type readOnlySource struct {
	st store.Store
}

var errReadOnly = errors.New("read-only source")

func (s *readOnlySource) List(ctx context.Context, favoritesOnly bool) ([]*store.Item, error) {
	if favoritesOnly {
		return s.st.History().Favorites(ctx, store.ListQuery{})
	}
	return s.st.History().List(ctx, store.ListQuery{})
}

func (s *readOnlySource) Search(ctx context.Context, query string) ([]*store.Item, error) {
	return s.st.History().Search(ctx, store.SearchQuery{Query: query})
}

func (s *readOnlySource) Detail(ctx context.Context, id string) (*store.ItemDetail, error) {
	return s.st.History().GetDetail(ctx, id)
}

func (s *readOnlySource) ToggleFavorite(context.Context, string) (bool, error) {
	return false, errReadOnly
}

func (s *readOnlySource) Delete(context.Context, string) error { return errReadOnly }

func (s *readOnlySource) Copy(context.Context, string) error { return errReadOnly }

func main() {
	var args layoutArgs
	arg.MustParse(&args)

	fmt.Println("Testing TUI Border Layout")
	fmt.Println("=========================")

	files, err := datafs.NewWithDataPath(args.DataDir)
	if err != nil {
		log.Fatalf("Error opening data directory: %v", err)
	}
	st, err := dbstore.NewSQLiteStore(files.DBPath(), dbstore.DefaultConfig())
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	count, err := st.History().Count(ctx)
	if err != nil {
		log.Fatalf("Error counting items: %v", err)
	}
	if count == 0 {
		fmt.Println("No items in history. Run 'go run ./cmd/demo/ --data-dir DIR' first.")
		return
	}

	model, err := tui.NewAppModel(ctx, &readOnlySource{st: st})
	if err != nil {
		log.Fatalf("Error creating model: %v", err)
	}
	model.Update(tea.WindowSizeMsg{Width: args.Width, Height: args.Height})

	view, err := tui.AppView(model)
	if err != nil {
		log.Fatalf("Error rendering view: %v", err)
	}
	lines := strings.Split(view, "\n")

	fmt.Printf("Rendered TUI view (%d lines):\n", len(lines))
	fmt.Println(strings.Repeat("=", args.Width))
	for i, line := range lines[:min(15, len(lines))] {
		fmt.Printf("Line %2d: %s\n", i, line)
	}
	fmt.Println(strings.Repeat("=", args.Width))

	var borderLine string
	for i, line := range lines {
		if i > 2 && i < len(lines)-3 && len(line) > 25 && strings.Contains(line, "│") {
			borderLine = line
			break
		}
	}
	if borderLine == "" {
		fmt.Println("Could not find a line with borders to analyze")
		return
	}

	var positions []int
	col := 0
	for _, r := range borderLine {
		if r == '│' {
			positions = append(positions, col)
		}
		col++
	}
	fmt.Printf("Found border characters (│) at columns: %v\n", positions)
	if len(positions) >= 2 {
		fmt.Printf("Left border at column %d, right border at column %d\n", positions[0], positions[len(positions)-1])
	} else {
		fmt.Println("Missing border characters")
	}
}
