package tail

import (
	"sync"
	"time"

	"github.com/tessro/reel/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventStarted EventType = iota
	EventStoryChange
	EventTimelineEnd
	EventClosed
)

// Event represents a story session change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Author    core.Author
	Index     int
	Story     *core.Story
}

// Recorder is a playback observer that turns engine notifications into a
// stream of events. Events are dropped rather than blocking the engine when
// the buffer is full.
type Recorder struct {
	author core.Author
	events chan Event
	now    func() time.Time

	mu     sync.Mutex
	closed bool
}

// NewRecorder creates a recorder for author's session.
func NewRecorder(author core.Author, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 16
	}
	return &Recorder{
		author: author,
		events: make(chan Event, buffer),
		now:    time.Now,
	}
}

// Events returns the channel of playback events.
func (r *Recorder) Events() <-chan Event {
	return r.events
}

// Started records that playback began at index.
func (r *Recorder) Started(index int) {
	r.emit(EventStarted, index)
}

func (r *Recorder) OnSegmentChanged(index int) {
	r.emit(EventStoryChange, index)
}

func (r *Recorder) OnTimelineEnded() {
	r.emit(EventTimelineEnd, -1)
}

func (r *Recorder) OnClosed() {
	r.emit(EventClosed, -1)
}

// Close closes the event channel. It is safe to call more than once.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closed {
		r.closed = true
		close(r.events)
	}
}

func (r *Recorder) emit(t EventType, index int) {
	e := Event{
		Type:      t,
		Timestamp: r.now(),
		Author:    r.author,
		Index:     index,
	}
	if index >= 0 && index < len(r.author.Stories) {
		e.Story = &r.author.Stories[index]
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.events <- e:
	default:
		// Drop event if channel is full
	}
}
