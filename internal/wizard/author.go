package wizard

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/tessro/reel/internal/registry"
)

// AuthorLabel renders one picker row: a ring for unseen authors, the name,
// and the story count.
func AuthorLabel(e registry.Entry) string {
	ring := "◉"
	if e.Marker.Seen {
		ring = "○"
	}
	n := len(e.Author.Stories)
	unit := "stories"
	if n == 1 {
		unit = "story"
	}
	return fmt.Sprintf("%s %s (%d %s)", ring, e.Author.Name, n, unit)
}

// RunAuthorPicker shows a select list of authors and returns the chosen one,
// or nil if the user aborted.
func RunAuthorPicker(authors []registry.Entry) (*registry.Entry, error) {
	options := make([]huh.Option[int], len(authors))
	for i, e := range authors {
		options[i] = huh.NewOption(AuthorLabel(e), i)
	}

	selected := 0
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Whose stories?").
				Description("◉ new  ○ seen").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}
	if selected < 0 || selected >= len(authors) {
		return nil, nil
	}
	return &authors[selected], nil
}
