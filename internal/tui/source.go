package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/yiblet/clipvault/internal/preview"
	"github.com/yiblet/clipvault/internal/store"
)

// Source is the clipboard history the browser displays and edits
type Source interface {
	List(ctx context.Context, favoritesOnly bool) ([]*store.Item, error)
	Search(ctx context.Context, query string) ([]*store.Item, error)
	Detail(ctx context.Context, id string) (*store.ItemDetail, error)
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	Copy(ctx context.Context, id string) error
}

// itemBody returns the text shown below an item's metadata
func itemBody(detail *store.ItemDetail) string {
	if detail == nil {
		return ""
	}

	switch detail.ContentType {
	case store.RichText:
		body := detail.PlainText
		if detail.RichContent != "" {
			body += "\n\n--- html ---\n" + detail.RichContent
		}
		return body
	case store.Image:
		if detail.ImagePath == "" {
			return "[image not archived]"
		}
		return "Archived at " + detail.ImagePath
	case store.File:
		content, err := preview.ReadFile(detail.FilePath, preview.DefaultMaxBytes)
		if err != nil {
			return fmt.Sprintf("%s\n\n[no preview: %v]", detail.FilePath, err)
		}
		body := detail.FilePath + "\n\n" + content.Text
		if content.Truncated {
			body += "\n[truncated]"
		}
		return body
	default:
		return detail.PlainText
	}
}

// metadataLines describes an item in a few short lines
func metadataLines(detail *store.ItemDetail) []string {
	header := fmt.Sprintf("Type: %s  Size: %s", detail.ContentType, formatSize(detail.ContentSize))
	if detail.IsFavorited {
		header += "  ★ favorite"
	}

	lines := []string{
		header,
		"Updated: " + detail.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
	}
	if source := strings.TrimSpace(detail.SourceAppName); source != "" {
		lines = append(lines, "Source: "+source)
	}
	if detail.HasThumbnail {
		lines = append(lines, "Thumbnail: yes")
	}
	return lines
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
