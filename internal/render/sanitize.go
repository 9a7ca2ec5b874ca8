// Package render formats recipes for the terminal.
package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Recipe summaries arrive as HTML fragments. The strict policy drops every
// tag and keeps the text.
var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips all markup from an HTML fragment, decodes entities and
// collapses runs of whitespace.
func PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	text := html.UnescapeString(strictPolicy.Sanitize(fragment))
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns PlainText cut to at most n runes on a word boundary.
func Excerpt(fragment string, n int) string {
	text := PlainText(fragment)
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
