package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// WrapText wraps text to fit within a given display width, breaking on word
// boundaries when possible. Newlines in the input are kept. Height
// truncation is handled by the caller during rendering.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		if lipgloss.Width(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}

	return result
}

// wrapLine wraps a single line that is too long
func wrapLine(line string, maxWidth int) []string {
	var result []string
	var current strings.Builder
	currentWidth := 0

	flush := func() {
		result = append(result, current.String())
		current.Reset()
		currentWidth = 0
	}

	for _, word := range splitWords(line) {
		wordWidth := lipgloss.Width(word)

		// Words wider than the line are broken rune by rune
		if wordWidth > maxWidth {
			if currentWidth > 0 {
				flush()
			}
			for _, r := range word {
				rw := lipgloss.Width(string(r))
				if currentWidth+rw > maxWidth {
					flush()
				}
				current.WriteRune(r)
				currentWidth += rw
			}
			continue
		}

		needed := wordWidth
		if currentWidth > 0 {
			needed++
		}
		if currentWidth+needed > maxWidth {
			flush()
		}
		if currentWidth > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += wordWidth
	}

	if currentWidth > 0 {
		flush()
	}
	return result
}

// splitWords splits text on whitespace
func splitWords(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}
