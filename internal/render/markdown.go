package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/asteroid-belt/pantry/internal/models"
)

// DefaultWrap is the word-wrap width for rendered markdown.
const DefaultWrap = 80

// Markdown renders markdown for terminal display and returns its lines.
// If rendering fails the raw content is returned split into lines.
func Markdown(content string, width int) []string {
	if content == "" {
		return []string{}
	}
	if width <= 0 {
		width = DefaultWrap
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return strings.Split(content, "\n")
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return strings.Split(content, "\n")
	}

	lines := strings.Split(rendered, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// RecipeMarkdown builds the markdown document shown by the detail view.
func RecipeMarkdown(r models.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)

	var facts []string
	if r.ReadyInMinutes > 0 {
		facts = append(facts, fmt.Sprintf("**Ready in:** %d min", r.ReadyInMinutes))
	}
	if r.Servings > 0 {
		facts = append(facts, fmt.Sprintf("**Servings:** %d", r.Servings))
	}
	if len(r.DishTypes) > 0 {
		facts = append(facts, "**Dish types:** "+strings.Join(r.DishTypes, ", "))
	}
	if r.IsPinned {
		facts = append(facts, ":pushpin: pinned")
	}
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	if len(facts) > 0 {
		b.WriteString("\n")
	}

	if summary := PlainText(models.Deref(r.Summary)); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	if src := models.Deref(r.SourceURL); src != "" {
		fmt.Fprintf(&b, "[Full recipe](%s)\n", src)
	}
	return b.String()
}

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, ch := range s {
		if ch == '\x1b' {
			inEscape = true
		} else if inEscape && ch == 'm' {
			inEscape = false
		} else if !inEscape {
			result.WriteRune(ch)
		}
	}

	return result.String()
}
