package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimelineAt(t *testing.T) {
	tl := NewTimeline([]Story{{ID: "a"}, {ID: "b"}})

	assert.Equal(t, 2, tl.Len())
	assert.False(t, tl.IsEmpty())
	assert.Equal(t, "b", tl.At(1).ID)
	assert.Nil(t, tl.At(2))
	assert.Nil(t, tl.At(-1))
}

func TestNewTimelineCopies(t *testing.T) {
	stories := []Story{{ID: "a"}, {ID: "b"}}
	tl := NewTimeline(stories)
	stories[0].ID = "z"

	assert.Equal(t, "a", tl.At(0).ID)
}

func TestSegmentProgress(t *testing.T) {
	s := &PlaybackState{
		Timeline: NewTimeline([]Story{{ID: "a"}, {ID: "b"}, {ID: "c"}}),
		Index:    1,
		Elapsed:  0.4,
		Status:   StatusPlaying,
	}

	assert.Equal(t, 1.0, s.SegmentProgress(0))
	assert.Equal(t, 0.4, s.SegmentProgress(1))
	assert.Equal(t, 0.0, s.SegmentProgress(2))
	assert.Equal(t, 0.0, s.SegmentProgress(3))
	assert.InDelta(t, 40.0, s.ProgressPercent(), 1e-9)
	assert.Equal(t, "b", s.Current().ID)
}

func TestNilState(t *testing.T) {
	var s *PlaybackState

	assert.Nil(t, s.Current())
	assert.False(t, s.IsPlaying())
	assert.Equal(t, 0.0, s.ProgressPercent())
}
