package playback

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessro/reel/internal/core"
	reelerrors "github.com/tessro/reel/internal/errors"
)

type recorder struct {
	mu      sync.Mutex
	changes []int
	ended   int
	closed  int
	seen    []string
}

func (r *recorder) OnSegmentChanged(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, i)
}

func (r *recorder) OnTimelineEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *recorder) OnClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
}

func (r *recorder) markSeen(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, id)
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes) + r.ended + r.closed
}

func timeline(ids ...string) core.Timeline {
	stories := make([]core.Story, len(ids))
	for i, id := range ids {
		stories[i] = core.Story{ID: id, ImageName: id}
	}
	return core.NewTimeline(stories)
}

func newEngine(t *testing.T, tl core.Timeline, step float64, sched Scheduler) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(tl, "clara", Options{
		Policy:    Policy{Step: step, Interval: 10 * time.Millisecond},
		Observer:  rec,
		MarkSeen:  rec.markSeen,
		Scheduler: sched,
	})
	return e, rec
}

func TestStartAtValidIndex(t *testing.T) {
	tl := timeline("a", "b", "c")
	for i := 0; i < tl.Len(); i++ {
		e, rec := newEngine(t, tl, 0.1, nil)

		require.NoError(t, e.Start(i))
		assert.Equal(t, i, e.CurrentIndex())
		assert.Equal(t, 0.0, e.CurrentElapsedFraction())
		assert.Equal(t, core.StatusPlaying, e.Status())
		assert.Equal(t, []string{"clara"}, rec.seen)
	}
}

func TestNewEngineIsIdle(t *testing.T) {
	e, rec := newEngine(t, timeline("a"), 0.1, nil)

	assert.Equal(t, core.StatusIdle, e.Status())
	assert.False(t, e.IsEnded())

	e.Tick()
	assert.Equal(t, 0.0, e.CurrentElapsedFraction())
	assert.Zero(t, rec.calls())
	assert.Empty(t, rec.seen)
}

func TestTickIsMonotonic(t *testing.T) {
	e, rec := newEngine(t, timeline("a", "b"), 0.1, nil)
	require.NoError(t, e.Start(0))

	prev := e.CurrentElapsedFraction()
	for i := 0; i < 9; i++ {
		e.Tick()
		got := e.CurrentElapsedFraction()
		assert.Greater(t, got, prev)
		assert.LessOrEqual(t, got, 1.0)
		prev = got
	}
	assert.InDelta(t, 0.9, prev, 1e-9)
	assert.Equal(t, 0, e.CurrentIndex())
	assert.Empty(t, rec.changes)
}

func TestTickAdvancesOneStoryPerOverflow(t *testing.T) {
	e, rec := newEngine(t, timeline("a", "b", "c"), 0.1, nil)
	require.NoError(t, e.Start(0))

	for i := 0; i < 10; i++ {
		e.Tick()
	}

	assert.Equal(t, 1, e.CurrentIndex())
	assert.Equal(t, 0.0, e.CurrentElapsedFraction())
	assert.Equal(t, []int{1}, rec.changes)
	assert.Equal(t, core.StatusPlaying, e.Status())

	for i := 0; i < 10; i++ {
		e.Tick()
	}
	assert.Equal(t, 2, e.CurrentIndex())
	assert.Equal(t, []int{1, 2}, rec.changes)
}

func TestSingleStoryEndsAfterOverflow(t *testing.T) {
	sched := NewManualScheduler()
	e, rec := newEngine(t, timeline("a"), 0.1, sched)
	require.NoError(t, e.Start(0))

	assert.Equal(t, 10, sched.Run(100))

	assert.True(t, e.IsEnded())
	assert.Equal(t, 1, rec.ended)
	assert.Empty(t, rec.changes)
	assert.Zero(t, sched.Pending(), "no tick may be scheduled after the end")
}

func TestDirectTicksEndTimeline(t *testing.T) {
	e, rec := newEngine(t, timeline("a"), 0.1, nil)
	require.NoError(t, e.Start(0))

	for i := 0; i < 15; i++ {
		e.Tick()
	}

	assert.True(t, e.IsEnded())
	assert.Equal(t, 1, rec.ended)
}

func TestInterruptStopsTicks(t *testing.T) {
	sched := NewManualScheduler()
	e, rec := newEngine(t, timeline("a", "b"), 0.1, sched)
	require.NoError(t, e.Start(0))
	sched.Run(3)
	before := e.CurrentElapsedFraction()

	e.Interrupt()
	assert.Equal(t, core.StatusPaused, e.Status())
	assert.Zero(t, sched.Pending())

	for i := 0; i < 50; i++ {
		e.Tick()
	}
	assert.False(t, sched.Fire())
	assert.Equal(t, before, e.CurrentElapsedFraction())
	assert.Equal(t, 0, e.CurrentIndex())
	assert.Zero(t, rec.calls())
}

func TestResumeContinuesFromRetainedProgress(t *testing.T) {
	sched := NewManualScheduler()
	e, _ := newEngine(t, timeline("a", "b"), 0.1, sched)
	require.NoError(t, e.Start(0))
	sched.Run(4)
	e.Interrupt()

	e.Resume()
	assert.Equal(t, core.StatusPlaying, e.Status())
	assert.Equal(t, 1, sched.Pending())
	assert.InDelta(t, 0.4, e.CurrentElapsedFraction(), 1e-9)

	sched.Run(1)
	assert.InDelta(t, 0.5, e.CurrentElapsedFraction(), 1e-9)
}

func TestResumeOnlyFromPaused(t *testing.T) {
	sched := NewManualScheduler()
	e, _ := newEngine(t, timeline("a"), 0.1, sched)

	e.Resume()
	assert.Equal(t, core.StatusIdle, e.Status())
	assert.Zero(t, sched.Pending())
}

// leakyScheduler ignores cancellation, like a timer whose callback was
// already in flight when it was stopped.
type leakyScheduler struct {
	fns []func()
}

func (s *leakyScheduler) Schedule(_ time.Duration, fn func()) func() {
	s.fns = append(s.fns, fn)
	return func() {}
}

func TestStaleTickIsDropped(t *testing.T) {
	sched := &leakyScheduler{}
	e, rec := newEngine(t, timeline("a", "b", "c"), 0.1, sched)
	require.NoError(t, e.Start(0))
	require.Len(t, sched.fns, 1)
	stale := sched.fns[0]

	require.NoError(t, e.AdvanceManually(2))
	stale()
	stale()

	assert.Equal(t, 2, e.CurrentIndex())
	assert.Equal(t, 0.0, e.CurrentElapsedFraction())

	live := sched.fns[len(sched.fns)-1]
	live()
	assert.InDelta(t, 0.1, e.CurrentElapsedFraction(), 1e-9)
	assert.Equal(t, []int{2}, rec.changes)
}

func TestStaleTickAfterCloseIsDropped(t *testing.T) {
	sched := &leakyScheduler{}
	e, rec := newEngine(t, timeline("a"), 0.1, sched)
	require.NoError(t, e.Start(0))

	e.Close()
	calls := rec.calls()
	for _, fn := range sched.fns {
		fn()
	}
	e.Tick()

	assert.Equal(t, calls, rec.calls())
	assert.Equal(t, 1, rec.closed)
	assert.Zero(t, rec.ended)
}

func TestCloseIsIdempotent(t *testing.T) {
	sched := NewManualScheduler()
	e, rec := newEngine(t, timeline("a", "b"), 0.1, sched)
	require.NoError(t, e.Start(1))

	e.Close()
	e.Close()

	assert.Equal(t, 1, rec.closed)
	assert.True(t, e.IsEnded())
	assert.True(t, e.IsClosed())
	assert.Zero(t, sched.Pending())
	assert.Equal(t, []string{"clara", "clara"}, rec.seen)
}

func TestNothingFiresAfterClose(t *testing.T) {
	sched := NewManualScheduler()
	e, rec := newEngine(t, timeline("a", "b"), 0.1, sched)
	require.NoError(t, e.Start(0))
	e.Close()
	calls := rec.calls()

	assert.NoError(t, e.Start(0))
	assert.NoError(t, e.AdvanceManually(1))
	assert.NoError(t, e.Next())
	assert.NoError(t, e.Previous())
	e.Resume()
	e.Tick()
	sched.Run(100)

	assert.Equal(t, calls, rec.calls())
	assert.True(t, e.IsEnded())
}

func TestCloseBeforeStartMarksSeen(t *testing.T) {
	e, rec := newEngine(t, timeline("a"), 0.1, nil)

	e.Close()

	assert.Equal(t, []string{"clara"}, rec.seen)
	assert.Equal(t, 1, rec.closed)
	assert.Zero(t, rec.ended)
}

func TestAdvanceManuallyPastEndEnds(t *testing.T) {
	sched := NewManualScheduler()
	e, rec := newEngine(t, timeline("a", "b", "c"), 0.1, sched)
	require.NoError(t, e.Start(0))

	err := e.AdvanceManually(5)

	assert.True(t, errors.Is(err, reelerrors.ErrIndexOutOfRange))
	assert.True(t, e.IsEnded())
	assert.Equal(t, 1, rec.ended)
	assert.Zero(t, sched.Pending())

	assert.NoError(t, e.AdvanceManually(5))
	assert.Equal(t, 1, rec.ended)
}

func TestAdvanceManuallyBelowZeroRestartsFirst(t *testing.T) {
	e, rec := newEngine(t, timeline("a", "b", "c"), 0.1, nil)
	require.NoError(t, e.Start(0))
	e.Tick()
	e.Tick()

	err := e.AdvanceManually(-1)

	assert.True(t, errors.Is(err, reelerrors.ErrIndexOutOfRange))
	assert.Equal(t, 0, e.CurrentIndex())
	assert.Equal(t, 0.0, e.CurrentElapsedFraction())
	assert.Equal(t, core.StatusPlaying, e.Status())
	assert.Empty(t, rec.changes)
}

func TestAdvanceManuallyRestartsTiming(t *testing.T) {
	sched := NewManualScheduler()
	e, rec := newEngine(t, timeline("a", "b", "c"), 0.1, sched)
	require.NoError(t, e.Start(0))
	sched.Run(5)

	require.NoError(t, e.AdvanceManually(1))

	assert.Equal(t, 1, e.CurrentIndex())
	assert.Equal(t, 0.0, e.CurrentElapsedFraction())
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, []int{1}, rec.changes)
}

func TestAdvanceManuallyFromPaused(t *testing.T) {
	sched := NewManualScheduler()
	e, _ := newEngine(t, timeline("a", "b"), 0.1, sched)
	require.NoError(t, e.Start(0))
	e.Interrupt()

	require.NoError(t, e.AdvanceManually(1))

	assert.Equal(t, core.StatusPlaying, e.Status())
	assert.Equal(t, 1, sched.Pending())
}

func TestNextAndPrevious(t *testing.T) {
	e, rec := newEngine(t, timeline("a", "b"), 0.1, nil)
	require.NoError(t, e.Start(0))

	require.NoError(t, e.Previous())
	assert.Equal(t, 0, e.CurrentIndex())

	require.NoError(t, e.Next())
	assert.Equal(t, 1, e.CurrentIndex())

	require.NoError(t, e.Previous())
	assert.Equal(t, 0, e.CurrentIndex())

	require.NoError(t, e.Next())
	err := e.Next()
	assert.True(t, errors.Is(err, reelerrors.ErrIndexOutOfRange))
	assert.True(t, e.IsEnded())
	assert.Equal(t, []int{1, 0, 1}, rec.changes)
	assert.Equal(t, 1, rec.ended)
}

func TestStartPastEndFromIdle(t *testing.T) {
	e, rec := newEngine(t, timeline("a", "b"), 0.1, nil)

	err := e.Start(2)

	assert.True(t, errors.Is(err, reelerrors.ErrIndexOutOfRange))
	assert.True(t, e.IsEnded())
	assert.Equal(t, 1, rec.ended)
	assert.Empty(t, rec.seen)
}

func TestStartReplaysEndedTimeline(t *testing.T) {
	e, rec := newEngine(t, timeline("a"), 0.5, nil)
	require.NoError(t, e.Start(0))
	e.Tick()
	e.Tick()
	require.True(t, e.IsEnded())

	require.NoError(t, e.Start(0))
	assert.Equal(t, core.StatusPlaying, e.Status())

	e.Tick()
	e.Tick()
	assert.Equal(t, 2, rec.ended)
}

func TestEmptyTimeline(t *testing.T) {
	sched := NewManualScheduler()
	e, rec := newEngine(t, timeline(), 0.1, sched)

	err := e.Start(0)

	assert.True(t, errors.Is(err, reelerrors.ErrEmptyTimeline))
	assert.True(t, e.IsEnded())
	assert.Equal(t, 1, rec.ended)
	assert.Zero(t, sched.Pending())

	_ = e.Start(0)
	assert.Equal(t, 1, rec.ended)
}

func TestOnlyOneTickPending(t *testing.T) {
	sched := NewManualScheduler()
	e, _ := newEngine(t, timeline("a", "b"), 0.1, sched)
	require.NoError(t, e.Start(0))

	e.Tick()
	e.Tick()
	require.NoError(t, e.Start(0))
	e.Interrupt()
	e.Resume()

	assert.Equal(t, 1, sched.Pending())
	d, ok := sched.NextDelay()
	assert.True(t, ok)
	assert.Equal(t, 10*time.Millisecond, d)
}

func TestSnapshot(t *testing.T) {
	e, _ := newEngine(t, timeline("a", "b"), 0.25, nil)
	require.NoError(t, e.Start(1))
	e.Tick()

	s := e.Snapshot()
	assert.Equal(t, "clara", s.AuthorID)
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, 0.25, s.Elapsed)
	assert.Equal(t, core.StatusPlaying, s.Status)
	assert.Equal(t, "b", s.Current().ID)
	assert.Equal(t, 1.0, s.SegmentProgress(0))
}

func TestTimerSchedulerPlaysThrough(t *testing.T) {
	done := make(chan struct{})
	var changes []int
	var mu sync.Mutex

	e := New(timeline("a", "b"), "paul", Options{
		Policy:    Policy{Step: 0.5, Interval: time.Millisecond},
		Scheduler: TimerScheduler{},
		Observer: ObserverFuncs{
			SegmentChanged: func(i int) {
				mu.Lock()
				changes = append(changes, i)
				mu.Unlock()
			},
			TimelineEnded: func() { close(done) },
		},
	})
	require.NoError(t, e.Start(0))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeline did not end")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1}, changes)
	assert.True(t, e.IsEnded())
}

func TestManualNavigationNotifiesSegmentChange(t *testing.T) {
	sched := NewManualScheduler()
	e, rec := newEngine(t, timeline("a", "b", "c"), 0.5, sched)

	require.NoError(t, e.Start(0))
	assert.Empty(t, rec.changes)

	// Replaying the first story is not a change
	require.NoError(t, e.Previous())
	assert.Empty(t, rec.changes)

	require.NoError(t, e.AdvanceManually(2))
	require.NoError(t, e.Previous())
	assert.Equal(t, []int{2, 1}, rec.changes)

	// Overflow reports through the same callback
	sched.Run(2)
	assert.Equal(t, []int{2, 1, 2}, rec.changes)
	assert.Equal(t, 0, rec.ended)
}
