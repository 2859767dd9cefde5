package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/ingest"
	"github.com/yiblet/clipvault/internal/preview"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/thumbnail"
)

// executeAdd handles the 'clipvault add' command
func (c *CLI) executeAdd(ctx context.Context, cmd *AddCmd) error {
	snap, err := c.readSnapshot(cmd)
	if err != nil {
		return err
	}
	if cmd.Source != "" {
		snap = snap.WithSource(cmd.Source, cmd.Source)
	}

	res, err := c.ingest.Ingest(ctx, snap)
	if err != nil {
		return fmt.Errorf("failed to store content: %w", err)
	}

	switch res.Status {
	case ingest.Skipped:
		fmt.Fprintln(c.out, "Skipped: content is empty or over the size limit")
	case ingest.Bumped:
		fmt.Fprintf(c.out, "Already stored, moved to top: %s\n", res.ID)
	default:
		fmt.Fprintf(c.out, "Stored: %s\n", res.ID)
	}
	return nil
}

// readSnapshot builds the snapshot described by the add flags
func (c *CLI) readSnapshot(cmd *AddCmd) (clipboard.Snapshot, error) {
	if cmd.Text != nil {
		return textSnapshot([]byte(*cmd.Text), cmd.HTML)
	}

	if cmd.File != nil && cmd.AsFile {
		path, err := filepath.Abs(*cmd.File)
		if err != nil {
			return clipboard.Snapshot{}, fmt.Errorf("failed to resolve path: %w", err)
		}
		return clipboard.File(path), nil
	}

	var data []byte
	var err error
	if cmd.File != nil {
		data, err = os.ReadFile(*cmd.File)
	} else {
		data, err = io.ReadAll(c.in)
	}
	if err != nil {
		return clipboard.Snapshot{}, fmt.Errorf("failed to read content: %w", err)
	}

	if !cmd.HTML && thumbnail.IsImageData(data) {
		return clipboard.Image(data), nil
	}
	return textSnapshot(data, cmd.HTML)
}

func textSnapshot(data []byte, html bool) (clipboard.Snapshot, error) {
	if !utf8.Valid(data) {
		return clipboard.Snapshot{}, fmt.Errorf("content is not UTF-8 text; use --as-file to record a file reference")
	}
	if html {
		return clipboard.HTML(string(data), clipboard.HTMLText(data)), nil
	}
	return clipboard.Text(string(data)), nil
}

// executeList handles the 'clipvault list' command
func (c *CLI) executeList(ctx context.Context, cmd *ListCmd) error {
	contentType, err := parseType(cmd.Type)
	if err != nil {
		return err
	}

	query := store.ListQuery{ContentType: contentType, Limit: cmd.Limit, Offset: cmd.Offset}
	var items []*store.Item
	if cmd.Favorites {
		items, err = c.store.History().Favorites(ctx, query)
	} else {
		items, err = c.store.History().List(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	if len(items) == 0 {
		fmt.Fprintln(c.out, "History is empty.")
		return nil
	}
	return c.printItems(items)
}

// executeSearch handles the 'clipvault search' command
func (c *CLI) executeSearch(ctx context.Context, cmd *SearchCmd) error {
	contentType, err := parseType(cmd.Type)
	if err != nil {
		return err
	}

	items, err := c.store.History().Search(ctx, store.SearchQuery{
		Query:       cmd.Query,
		ContentType: contentType,
		Limit:       cmd.Limit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(items) == 0 {
		return fmt.Errorf("no matches found for: %s", cmd.Query)
	}
	return c.printItems(items)
}

func parseType(s string) (*store.ContentType, error) {
	if s == "" {
		return nil, nil
	}
	ct, err := store.ParseContentType(s)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// printItems writes one aligned row per item
func (c *CLI) printItems(items []*store.Item) error {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for _, item := range items {
		fav := " "
		if item.IsFavorited {
			fav = "★"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\n",
			item.ID,
			item.ContentType,
			item.UpdatedAt.Local().Format("2006-01-02 15:04"),
			fav,
			preview.Title(item, preview.DefaultTitleLen),
		)
	}
	return w.Flush()
}

// executeShow handles the 'clipvault show' command
func (c *CLI) executeShow(ctx context.Context, cmd *ShowCmd) error {
	detail, err := c.store.History().GetDetail(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to get item %s: %w", cmd.ID, err)
	}

	if cmd.Info {
		return c.printInfo(detail)
	}

	switch detail.ContentType {
	case store.RichText:
		if cmd.HTML {
			_, err = io.WriteString(c.out, detail.RichContent)
			return err
		}
		_, err = io.WriteString(c.out, detail.PlainText)
		return err
	case store.Image:
		if detail.ImagePath == "" {
			return fmt.Errorf("image %s has no archived original", cmd.ID)
		}
		f, err := os.Open(detail.ImagePath)
		if err != nil {
			return fmt.Errorf("failed to open archived image: %w", err)
		}
		defer f.Close()
		_, err = io.Copy(c.out, f)
		return err
	case store.File:
		content, err := preview.ReadFile(detail.FilePath, preview.DefaultMaxBytes)
		if err != nil {
			fmt.Fprintln(c.out, detail.FilePath)
			if errors.Is(err, preview.ErrNotText) {
				return nil
			}
			return fmt.Errorf("failed to preview file: %w", err)
		}
		fmt.Fprint(c.out, content.Text)
		if content.Truncated {
			fmt.Fprintf(c.out, "\n[truncated after %d lines]\n", content.Lines)
		}
		return nil
	default:
		_, err = io.WriteString(c.out, detail.PlainText)
		return err
	}
}

// printInfo writes an item's metadata
func (c *CLI) printInfo(detail *store.ItemDetail) error {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(w, "%s:\t%s\n", k, v)
		}
	}

	row("ID", detail.ID)
	row("Type", detail.ContentType.String())
	row("Title", preview.Title(&detail.Item, preview.DefaultTitleLen))
	row("Size", fmt.Sprintf("%d bytes", detail.ContentSize))
	row("SHA256", detail.ContentHash)
	row("Favorite", fmt.Sprintf("%t", detail.IsFavorited))
	row("Created", detail.CreatedAt.Local().Format(time.RFC3339))
	row("Updated", detail.UpdatedAt.Local().Format(time.RFC3339))
	row("Source", strings.TrimSpace(detail.SourceAppName))
	row("Image", detail.ImagePath)
	row("File", detail.FilePath)
	row("Thumbnail", fmt.Sprintf("%t", detail.HasThumbnail))
	return w.Flush()
}

// executeThumb handles the 'clipvault thumb' command
func (c *CLI) executeThumb(ctx context.Context, cmd *ThumbCmd) error {
	data, err := c.store.History().GetThumbnail(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to get thumbnail: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("item %s has no thumbnail", cmd.ID)
	}

	if cmd.Output == nil {
		_, err = c.out.Write(data)
		return err
	}
	if err := os.WriteFile(*cmd.Output, data, 0644); err != nil {
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}
	fmt.Fprintf(c.out, "Written to %s\n", *cmd.Output)
	return nil
}

// executeFav handles the 'clipvault fav' command
func (c *CLI) executeFav(ctx context.Context, cmd *FavCmd) error {
	on, err := c.store.History().ToggleFavorite(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}
	if on {
		fmt.Fprintf(c.out, "Favorited %s\n", cmd.ID)
	} else {
		fmt.Fprintf(c.out, "Unfavorited %s\n", cmd.ID)
	}
	return nil
}

// executeDelete handles the 'clipvault delete' command
func (c *CLI) executeDelete(ctx context.Context, cmd *DeleteCmd) error {
	for _, id := range cmd.IDs {
		if err := c.retention.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
		fmt.Fprintf(c.out, "Deleted %s\n", id)
	}
	return nil
}

// executeCopy handles the 'clipvault copy' command
func (c *CLI) executeCopy(ctx context.Context, cmd *CopyCmd) error {
	detail, err := c.copyItem(ctx, cmd.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Copied to clipboard: %s\n", preview.Title(&detail.Item, preview.DefaultTitleLen))
	return nil
}

// copyItem writes an item back to the clipboard
func (c *CLI) copyItem(ctx context.Context, id string) (*store.ItemDetail, error) {
	detail, err := c.store.History().GetDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}

	snap, err := snapshotOf(detail)
	if err != nil {
		return nil, err
	}
	if err := c.clipboard.Write(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return detail, nil
}

// snapshotOf rebuilds the clipboard payload of a stored item
func snapshotOf(detail *store.ItemDetail) (clipboard.Snapshot, error) {
	switch detail.ContentType {
	case store.RichText:
		return clipboard.HTML(detail.RichContent, detail.PlainText), nil
	case store.Image:
		if detail.ImagePath == "" {
			return clipboard.Snapshot{}, fmt.Errorf("image %s has no archived original", detail.ID)
		}
		data, err := os.ReadFile(detail.ImagePath)
		if err != nil {
			return clipboard.Snapshot{}, fmt.Errorf("failed to read archived image: %w", err)
		}
		return clipboard.Image(data), nil
	case store.File:
		return clipboard.File(detail.FilePath), nil
	default:
		return clipboard.Text(detail.PlainText), nil
	}
}
