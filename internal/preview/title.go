package preview

import (
	"strings"
	"unicode"

	"github.com/yiblet/clipvault/internal/store"
)

// DefaultTitleLen is the title width used by listings.
const DefaultTitleLen = 80

// Title creates a one-line label for an item.
// Text items use their first non-empty line, files their name, and
// images a placeholder.
func Title(item *store.Item, maxLen int) string {
	var title string
	switch item.ContentType {
	case store.Image:
		title = "[image]"
	case store.File:
		title = item.FileName
		if title == "" {
			title = item.FilePath
		}
		title = SanitizeTitle(title)
	default:
		title = GenerateTitle(item.PlainText)
	}
	return TruncateTitle(title, maxLen)
}

// GenerateTitle uses the first non-empty line of text, sanitized.
func GenerateTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if cleaned := SanitizeTitle(line); cleaned != "" {
			return cleaned
		}
	}
	return "[empty]"
}

// TruncateTitle ensures title is at most maxLen runes.
// If truncation is needed, appends "..." to indicate truncation.
func TruncateTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)

	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}

	// Reserve 3 characters for "..."
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}

	return string(runes[:maxLen-3]) + "..."
}

// SanitizeTitle removes control characters and collapses whitespace.
// This ensures titles are safe for display in terminals.
func SanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, title)

	return strings.Join(strings.Fields(title), " ")
}
