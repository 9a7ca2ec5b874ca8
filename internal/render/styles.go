package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/paging"
)

// Palette.
var (
	colorAccent = lipgloss.Color("#10B981")
	colorWarn   = lipgloss.Color("#F59E0B")
	colorError  = lipgloss.Color("#EF4444")
	colorMuted  = lipgloss.Color("#6B6B6B")
)

// Reusable styles.
var (
	Heading = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	Muted   = lipgloss.NewStyle().Foreground(colorMuted)
	Warn    = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	Error   = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	badge       = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	remoteBadge = badge.Foreground(lipgloss.Color("#FFFFFF")).Background(colorAccent)
	cacheBadge  = badge.Foreground(lipgloss.Color("#000000")).Background(colorWarn)
)

// SourceBadge labels where a page came from.
func SourceBadge(s paging.Source) string {
	if s == paging.SourceCache {
		return cacheBadge.Render("OFFLINE")
	}
	return remoteBadge.Render("LIVE")
}

// RecipeLine formats one list row: id, title, then muted facts.
func RecipeLine(r models.Recipe) string {
	var meta []string
	if r.ReadyInMinutes > 0 {
		meta = append(meta, fmt.Sprintf("%d min", r.ReadyInMinutes))
	}
	if r.Servings > 0 {
		meta = append(meta, fmt.Sprintf("serves %d", r.Servings))
	}
	pin := "  "
	if r.IsPinned {
		pin = "📌"
	}
	line := fmt.Sprintf("%s %8d  %s", pin, r.ID, r.Title)
	if len(meta) > 0 {
		line += "  " + Muted.Render(strings.Join(meta, " · "))
	}
	return line
}

// PageFooter describes the cursors of a page.
func PageFooter(p paging.Page, index int) string {
	parts := []string{fmt.Sprintf("page %d", index)}
	if p.Prev != nil {
		parts = append(parts, fmt.Sprintf("prev: --page %d", *p.Prev))
	}
	if p.Next != nil {
		parts = append(parts, fmt.Sprintf("next: --page %d", *p.Next))
	} else {
		parts = append(parts, "end of results")
	}
	return Muted.Render(strings.Join(parts, "  |  "))
}

// Meter renders a fixed-width usage bar such as pinned versus cached rows.
func Meter(used, total int64, width int) string {
	if width <= 0 {
		width = 15
	}
	filled := 0
	if total > 0 {
		filled = int(float64(width) * float64(used) / float64(total))
		if filled > width {
			filled = width
		}
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(colorAccent).Render("["+bar+"]") +
		Muted.Render(fmt.Sprintf(" %d/%d", used, total))
}
