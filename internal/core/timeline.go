package core

// Timeline is the fixed, ordered sequence of stories played for one author.
type Timeline []Story

// NewTimeline copies stories into a timeline so later edits to the source
// slice cannot reorder a running session.
func NewTimeline(stories []Story) Timeline {
	t := make(Timeline, len(stories))
	copy(t, stories)
	return t
}

// Len returns the number of stories.
func (t Timeline) Len() int {
	return len(t)
}

// IsEmpty returns true if the timeline has no stories.
func (t Timeline) IsEmpty() bool {
	return len(t) == 0
}

// Valid reports whether i indexes a story.
func (t Timeline) Valid(i int) bool {
	return i >= 0 && i < len(t)
}

// At returns the story at i, or nil if i is out of range.
func (t Timeline) At(i int) *Story {
	if !t.Valid(i) {
		return nil
	}
	return &t[i]
}
