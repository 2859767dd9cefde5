package clipboard

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTMLText extracts the visible text of an HTML fragment, one space
// between text nodes. Script and style contents are dropped.
func HTMLText(markup []byte) string {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if val := strings.TrimSpace(n.Data); val != "" {
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(val)
			}
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}
