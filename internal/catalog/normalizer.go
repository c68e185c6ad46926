// Package catalog normalizes administrator-supplied scholarship content
// before it is stored: descriptions arrive as HTML and are sanitized,
// and a plain-text summary is derived for list views and match cards.
package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

const summaryMaxLen = 280

// blockElements get a trailing space before text extraction so adjacent
// blocks do not run together.
const blockElements = "p, div, li, h1, h2, h3, h4, h5, h6, blockquote, tr, br"

var descriptionPolicy = bluemonday.UGCPolicy()

// SanitizeDescription strips scripts, event handlers and other unsafe
// markup from a scholarship description, keeping basic formatting.
func SanitizeDescription(raw string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(raw))
}

// Summarize converts description HTML to collapsed plain text and
// truncates it for display on scholarship cards.
func Summarize(raw string) string {
	return truncateText(htmlToText(raw), summaryMaxLen)
}

// htmlToText extracts the text content of an HTML fragment, collapsing
// whitespace. "<p>a</p><p>b</p>" reads "a b", not "ab". Falls back to
// the raw input if parsing fails.
func htmlToText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return cleanText(raw)
	}
	doc.Find(blockElements).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendNodes(&html.Node{Type: html.TextNode, Data: " "})
	})
	return cleanText(doc.Text())
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen > 3 {
		return text[:maxLen-3] + "..."
	}
	return text[:maxLen]
}
