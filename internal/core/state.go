package core

// Status is the playback engine's state machine position.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// PlaybackState is a point-in-time view of a story session.
type PlaybackState struct {
	AuthorID string   `json:"author_id"`
	Timeline Timeline `json:"-"`
	Index    int      `json:"index"`
	Elapsed  float64  `json:"elapsed"`
	Status   Status   `json:"status"`
}

// Current returns the active story, or nil if there is none.
func (s *PlaybackState) Current() *Story {
	if s == nil {
		return nil
	}
	return s.Timeline.At(s.Index)
}

// IsPlaying returns true while the tick loop is active.
func (s *PlaybackState) IsPlaying() bool {
	return s != nil && s.Status == StatusPlaying
}

// ProgressPercent returns the active story's progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil {
		return 0
	}
	return s.Elapsed * 100
}

// SegmentProgress returns the fill fraction for story i: finished stories
// are full, upcoming ones empty, and the active one reports Elapsed.
func (s *PlaybackState) SegmentProgress(i int) float64 {
	if s == nil || !s.Timeline.Valid(i) {
		return 0
	}
	switch {
	case i < s.Index:
		return 1
	case i > s.Index:
		return 0
	case s.Status == StatusIdle:
		return 0
	default:
		return s.Elapsed
	}
}
