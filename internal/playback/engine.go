// Package playback drives a single author's story session: a timed state
// machine that fills one progress bar at a time, advances on overflow, and
// tells an observer when the session moves, ends, or is closed.
package playback

import (
	"fmt"
	"sync"

	"github.com/tessro/reel/internal/core"
	reelerrors "github.com/tessro/reel/internal/errors"
	"github.com/tessro/reel/internal/logger"
)

// Options configures an Engine. Every field is optional.
type Options struct {
	Policy    Policy
	Observer  Observer
	MarkSeen  func(subjectID string)
	Scheduler Scheduler
	Logger    logger.Logger
}

// Engine plays one author's timeline.
//
// Ticks come either from the configured Scheduler or from direct calls to
// Tick. At most one scheduled tick is pending at a time, and every command
// that moves the session cancels it first. A timer that has already fired
// but not yet acquired the lock carries a stale generation and is dropped.
type Engine struct {
	mu sync.Mutex

	subject   string
	timeline  core.Timeline
	policy    Policy
	observer  Observer
	markSeen  func(string)
	scheduler Scheduler
	log       logger.Logger

	status core.Status
	index  int
	ticks  int
	closed bool

	gen    uint64
	cancel func()
}

// New creates an idle engine for subjectID's timeline.
func New(timeline core.Timeline, subjectID string, opts Options) *Engine {
	e := &Engine{
		subject:   subjectID,
		timeline:  core.NewTimeline(timeline),
		policy:    opts.Policy.withDefaults(),
		observer:  opts.Observer,
		markSeen:  opts.MarkSeen,
		scheduler: opts.Scheduler,
		log:       opts.Logger,
		status:    core.StatusIdle,
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	return e
}

// Start begins playback at index, from any state. A negative index restarts
// at the first story; an index past the end ends the timeline. Both cases
// return ErrIndexOutOfRange after the transition. An empty timeline ends
// immediately and returns ErrEmptyTimeline.
func (e *Engine) Start(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	return e.startLocked(index)
}

// AdvanceManually jumps to index, restarting its progress. It is a no-op
// once the timeline has ended. Out-of-range targets follow Start's policy.
func (e *Engine) AdvanceManually(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.status == core.StatusEnded {
		return nil
	}
	return e.startLocked(index)
}

// Next moves to the following story, or ends the session on the last one.
func (e *Engine) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.status == core.StatusEnded {
		return nil
	}
	return e.startLocked(e.index + 1)
}

// Previous moves to the preceding story. On the first story it replays it.
func (e *Engine) Previous() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.status == core.StatusEnded {
		return nil
	}
	target := e.index - 1
	if target < 0 {
		target = 0
	}
	return e.startLocked(target)
}

// Tick advances the active story by one step. It does nothing unless the
// engine is playing.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tickLocked()
}

// Interrupt pauses playback and cancels any pending tick. Progress is kept.
func (e *Engine) Interrupt() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.status != core.StatusPlaying {
		return
	}
	e.cancelPendingLocked()
	e.status = core.StatusPaused
	e.log.Debugf("story %s paused at %d (%.2f)", e.subject, e.index, e.policy.fraction(e.ticks))
}

// Resume continues a paused session from where it stopped.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.status != core.StatusPaused {
		return
	}
	e.status = core.StatusPlaying
	e.scheduleLocked()
	e.log.Debugf("story %s resumed at %d", e.subject, e.index)
}

// Close ends the session for good: the subject is marked seen, pending work
// is cancelled, and OnClosed fires once. Later calls do nothing, and no
// further notifications are ever sent.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.cancelPendingLocked()
	e.closed = true
	e.status = core.StatusEnded
	e.seenLocked()
	e.log.Debugf("story %s closed at %d", e.subject, e.index)
	e.observer.OnClosed()
}

// CurrentIndex returns the active story index.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// CurrentElapsedFraction returns the active story's progress in [0, 1].
func (e *Engine) CurrentElapsedFraction() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.policy.fraction(e.ticks)
}

// IsEnded returns true once the timeline is exhausted or the session closed.
func (e *Engine) IsEnded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status == core.StatusEnded
}

// IsClosed returns true after Close.
func (e *Engine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Status returns the current state machine position.
func (e *Engine) Status() core.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Policy returns the pacing in effect.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Subject returns the ID of the author being played.
func (e *Engine) Subject() string {
	return e.subject
}

// Timeline returns the stories being played.
func (e *Engine) Timeline() core.Timeline {
	return e.timeline
}

// Snapshot returns a copy of the current playback state for rendering.
func (e *Engine) Snapshot() core.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return core.PlaybackState{
		AuthorID: e.subject,
		Timeline: e.timeline,
		Index:    e.index,
		Elapsed:  e.policy.fraction(e.ticks),
		Status:   e.status,
	}
}

func (e *Engine) startLocked(index int) error {
	e.cancelPendingLocked()

	if e.timeline.IsEmpty() {
		e.log.Debugf("story %s has no segments", e.subject)
		e.endLocked()
		return reelerrors.ErrEmptyTimeline
	}

	var err error
	switch {
	case index >= e.timeline.Len():
		e.log.Debugf("story %s: index %d past end of %d", e.subject, index, e.timeline.Len())
		e.endLocked()
		return fmt.Errorf("%w: %d >= %d", reelerrors.ErrIndexOutOfRange, index, e.timeline.Len())
	case index < 0:
		err = fmt.Errorf("%w: %d < 0", reelerrors.ErrIndexOutOfRange, index)
		index = 0
	}

	active := e.status == core.StatusPlaying || e.status == core.StatusPaused
	changed := active && index != e.index

	e.index = index
	e.ticks = 0
	e.status = core.StatusPlaying
	e.seenLocked()
	e.log.Debugf("story %s playing %d/%d", e.subject, index+1, e.timeline.Len())

	if changed {
		e.observer.OnSegmentChanged(index)
	}
	e.scheduleLocked()
	return err
}

func (e *Engine) tickLocked() {
	if e.closed || e.status != core.StatusPlaying {
		return
	}
	e.cancelPendingLocked()

	e.ticks++
	if e.ticks < e.policy.TicksPerSegment() {
		e.scheduleLocked()
		return
	}

	if !e.timeline.Valid(e.index + 1) {
		e.endLocked()
		return
	}

	e.index++
	e.ticks = 0
	e.log.Debugf("story %s advanced to %d", e.subject, e.index)
	e.observer.OnSegmentChanged(e.index)
	e.scheduleLocked()
}

// endLocked moves to Ended, notifying only on the transition.
func (e *Engine) endLocked() {
	e.cancelPendingLocked()
	if e.status == core.StatusEnded {
		return
	}
	e.status = core.StatusEnded
	e.log.Debugf("story %s ended", e.subject)
	e.observer.OnTimelineEnded()
}

func (e *Engine) seenLocked() {
	if e.markSeen != nil {
		e.markSeen(e.subject)
	}
}

func (e *Engine) scheduleLocked() {
	if e.scheduler == nil {
		return
	}
	gen := e.gen
	e.cancel = e.scheduler.Schedule(e.policy.Interval, func() {
		e.fire(gen)
	})
}

func (e *Engine) cancelPendingLocked() {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// fire runs a scheduled tick unless the session has moved on since it was
// scheduled.
func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return
	}
	e.cancel = nil
	e.tickLocked()
}
