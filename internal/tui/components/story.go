package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/reel/internal/core"
	"github.com/tessro/reel/internal/tui/styles"
)

// segmentGap separates adjacent progress bars
const segmentGap = 1

// Story displays the active story session
type Story struct{}

// NewStory creates a new Story component
func NewStory() *Story {
	return &Story{}
}

// Render renders the story viewer
func (s *Story) Render(state core.PlaybackState, author core.Author, width, height int) string {
	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		s.renderProgress(state, inner),
		"",
		s.renderAuthor(state, author, inner),
	)

	image := "No story"
	if story := state.Current(); story != nil {
		image = story.ImageName
	}
	bodyHeight := height - lipgloss.Height(header) - 4
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	body := lipgloss.NewStyle().
		Width(inner).
		Height(bodyHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.Title.Render(image))

	return styles.Panel(true).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// renderProgress draws one bar per story, splitting width between them.
func (s *Story) renderProgress(state core.PlaybackState, width int) string {
	n := state.Timeline.Len()
	if n == 0 {
		return styles.ProgressBar(0, width)
	}

	segWidth := (width - segmentGap*(n-1)) / n
	if segWidth < 1 {
		segWidth = 1
	}

	bars := make([]string, n)
	for i := range bars {
		bars[i] = styles.ProgressBar(state.SegmentProgress(i), segWidth)
	}
	return strings.Join(bars, strings.Repeat(" ", segmentGap))
}

func (s *Story) renderAuthor(state core.PlaybackState, author core.Author, width int) string {
	left := fmt.Sprintf("%s %s", styles.StatusIcon(state.IsPlaying()), styles.Title.Render(author.Name))

	right := fmt.Sprintf("%d/%d", state.Index+1, state.Timeline.Len())
	if state.Status == core.StatusPaused {
		right = styles.Paused.Render("paused") + "  " + right
	}
	right = styles.Dim.Render(right)

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}
