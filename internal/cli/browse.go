package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/tui"
)

// browseLimit caps how many items the browser loads per listing
const browseLimit = 500

// historySource adapts the store and retention engine to the browser
type historySource struct {
	cli *CLI
}

var _ tui.Source = (*historySource)(nil)

func (s *historySource) List(ctx context.Context, favoritesOnly bool) ([]*store.Item, error) {
	query := store.ListQuery{Limit: browseLimit}
	if favoritesOnly {
		return s.cli.store.History().Favorites(ctx, query)
	}
	return s.cli.store.History().List(ctx, query)
}

func (s *historySource) Search(ctx context.Context, query string) ([]*store.Item, error) {
	return s.cli.store.History().Search(ctx, store.SearchQuery{Query: query, Limit: browseLimit})
}

func (s *historySource) Detail(ctx context.Context, id string) (*store.ItemDetail, error) {
	return s.cli.store.History().GetDetail(ctx, id)
}

func (s *historySource) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	return s.cli.store.History().ToggleFavorite(ctx, id)
}

func (s *historySource) Delete(ctx context.Context, id string) error {
	return s.cli.retention.Delete(ctx, id)
}

func (s *historySource) Copy(ctx context.Context, id string) error {
	_, err := s.cli.copyItem(ctx, id)
	return err
}

// launchTUI starts the interactive browser
func (c *CLI) launchTUI(ctx context.Context) error {
	count, err := c.store.History().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count items: %w", err)
	}

	// If history is empty, show a helpful message
	if count == 0 {
		fmt.Fprintln(c.out, "History is empty!")
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "To record clipboard history:")
		fmt.Fprintln(c.out, "  clipvault watch")
		fmt.Fprintln(c.out, "  echo \"Hello World\" | clipvault add")
		return nil
	}

	model, err := tui.NewAppModel(ctx, &historySource{cli: c})
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
