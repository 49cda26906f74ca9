package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tessro/reel/internal/registry"
	"github.com/tessro/reel/internal/tui/styles"
)

// Feed displays the author list with story rings
type Feed struct {
	selected int
}

// NewFeed creates a new Feed component
func NewFeed() *Feed {
	return &Feed{}
}

// Render renders the feed panel
func (f *Feed) Render(entries []registry.Entry, width, height int, focused bool) string {
	title := styles.PanelTitle("Stories", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No stories")
	} else {
		content = f.renderEntries(entries, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (f *Feed) renderEntries(entries []registry.Entry, width, maxLines int) string {
	if maxLines < 1 {
		maxLines = 1
	}

	// Keep the selection in view
	start := 0
	if f.selected >= maxLines {
		start = f.selected - maxLines + 1
	}

	lines := make([]string, 0, maxLines)
	for i := start; i < len(entries) && len(lines) < maxLines; i++ {
		e := entries[i]

		name := e.Author.Name
		if i == f.selected {
			name = styles.Highlight.Render("> " + name)
		} else {
			name = "  " + name
		}

		detail := storyCount(len(e.Author.Stories))
		if e.Marker.Seen && !e.Marker.SeenAt.IsZero() {
			detail = "seen " + humanize.Time(e.Marker.SeenAt)
		}

		line := fmt.Sprintf("%s %s", styles.Ring(e.Marker.Seen), name)
		pad := width - lipgloss.Width(line) - len(detail)
		if pad < 1 {
			pad = 1
		}
		lines = append(lines, line+strings.Repeat(" ", pad)+styles.Dim.Render(detail))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SelectNext moves selection down
func (f *Feed) SelectNext(count int) {
	if f.selected < count-1 {
		f.selected++
	}
}

// SelectPrev moves selection up
func (f *Feed) SelectPrev() {
	if f.selected > 0 {
		f.selected--
	}
}

// Selected returns the currently selected index
func (f *Feed) Selected() int {
	return f.selected
}

// Reset moves the selection back to the top
func (f *Feed) Reset() {
	f.selected = 0
}

// Clamp keeps the selection inside a list of count entries
func (f *Feed) Clamp(count int) {
	if f.selected >= count {
		f.selected = count - 1
	}
	if f.selected < 0 {
		f.selected = 0
	}
}

func storyCount(n int) string {
	if n == 1 {
		return "1 story"
	}
	return fmt.Sprintf("%d stories", n)
}
