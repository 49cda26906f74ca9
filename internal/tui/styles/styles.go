package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors - a warm story palette
var (
	// Ring gradient ends, used for unseen authors
	Primary   = lipgloss.Color("#D62976") // Magenta
	Secondary = lipgloss.Color("#FA7E1E") // Orange
	Accent    = lipgloss.Color("#FEDA75") // Yellow

	// Status colors
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red

	// Neutral colors
	Border    = lipgloss.Color("#4B5563") // Light gray
	Text      = lipgloss.Color("#F9FAFB") // White
	TextMuted = lipgloss.Color("#9CA3AF") // Gray
	TextDim   = lipgloss.Color("#6B7280") // Darker gray
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextMuted)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Unseen = lipgloss.NewStyle().
		Foreground(Secondary)

	Paused = lipgloss.NewStyle().
		Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// Border styles
var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)
)

// Apply switches text colors for the configured theme. "auto" asks the
// terminal for its background.
func Apply(theme string) {
	light := theme == "light" || (theme == "auto" && !lipgloss.HasDarkBackground())
	if !light {
		return
	}
	Text = lipgloss.Color("#111827")
	TextMuted = lipgloss.Color("#4B5563")
	TextDim = lipgloss.Color("#9CA3AF")

	Title = Title.Foreground(Text)
	Subtitle = Subtitle.Foreground(TextMuted)
	Muted = Muted.Foreground(TextMuted)
	Label = Label.Foreground(TextDim)
	Dim = Dim.Foreground(TextDim)
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string for a fraction in [0, 1].
func ProgressBar(fraction float64, width int) string {
	if width < 0 {
		width = 0
	}
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Text)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// Ring returns the avatar ring for an author.
func Ring(seen bool) string {
	if seen {
		return Dim.Render("○")
	}
	return Unseen.Render("◉")
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Unseen.Render("▶")
	}
	return Paused.Render("⏸")
}
