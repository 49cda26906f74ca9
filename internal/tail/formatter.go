package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      e.Type.String(),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Author:    e.Author.Name,
		Total:     len(e.Author.Stories),
	}
	if e.Story != nil {
		data.Story = e.Story.ImageName
		data.Position = e.Index + 1
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Author    string
	Story     string
	Position  int
	Total     int
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	total := len(e.Author.Stories)

	switch e.Type {
	case EventStarted:
		if e.Story != nil {
			return fmt.Sprintf("Watching %s: %s (%d/%d)", e.Author.Name, e.Story.ImageName, e.Index+1, total)
		}
		return fmt.Sprintf("Watching %s", e.Author.Name)

	case EventStoryChange:
		if e.Story != nil {
			return fmt.Sprintf("Next: %s (%d/%d)", e.Story.ImageName, e.Index+1, total)
		}
		return "Story changed"

	case EventTimelineEnd:
		return fmt.Sprintf("Finished %s's stories", e.Author.Name)

	case EventClosed:
		return "Closed"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventStarted:
		return "▶️"
	case EventStoryChange:
		return "🖼️"
	case EventTimelineEnd:
		return "✅"
	case EventClosed:
		return "✖️"
	default:
		return "❓"
	}
}

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventStoryChange:
		return "story_change"
	case EventTimelineEnd:
		return "timeline_end"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}
