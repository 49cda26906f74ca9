package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/reel/internal/registry"
	"github.com/tessro/reel/internal/tui/styles"
)

// Posts displays placeholder posts under the story feed
type Posts struct{}

// NewPosts creates a new Posts component
func NewPosts() *Posts {
	return &Posts{}
}

// Render renders the posts panel
func (p *Posts) Render(entries []registry.Entry, width, height int) string {
	title := styles.PanelTitle("Posts", false)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("Nothing posted yet")
	} else {
		content = p.renderPosts(entries, width-4, height-4)
	}

	panel := styles.Panel(false).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (p *Posts) renderPosts(entries []registry.Entry, width, maxLines int) string {
	// Each card takes a header line and a placeholder line
	const cardHeight = 3

	cards := make([]string, 0, len(entries))
	for i, e := range entries {
		if (i+1)*cardHeight > maxLines+1 {
			break
		}
		header := styles.Title.Render(e.Author.Name)
		body := styles.Dim.Render(truncate("▢ "+e.Author.PhotoName, width))
		cards = append(cards, lipgloss.JoinVertical(lipgloss.Left, header, body, ""))
	}

	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
