package playback

import (
	"sync"
	"time"
)

// Scheduler runs fn once after d. The returned cancel func must be safe to
// call more than once and after fn has run.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, fn func()) func()

func (f SchedulerFunc) Schedule(d time.Duration, fn func()) func() {
	return f(d, fn)
}

// TimerScheduler schedules ticks on runtime timers. fn runs on its own
// goroutine.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues scheduled work until the caller fires it. It lets
// tests and step-through tools drive the engine without wall-clock delays.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Schedule(d time.Duration, fn func()) func() {
	task := &manualTask{delay: d, fn: fn}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		task.cancelled = true
		s.mu.Unlock()
	}
}

// Pending returns the number of live (uncancelled) tasks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// NextDelay returns the delay of the oldest live task.
func (s *ManualScheduler) NextDelay() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if !t.cancelled {
			return t.delay, true
		}
	}
	return 0, false
}

// Fire runs the oldest live task and reports whether one ran. Cancelled
// tasks ahead of it are discarded.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	var task *manualTask
	for len(s.tasks) > 0 {
		t := s.tasks[0]
		s.tasks = s.tasks[1:]
		if !t.cancelled {
			task = t
			break
		}
	}
	s.mu.Unlock()

	if task == nil {
		return false
	}
	task.fn()
	return true
}

// Run fires up to n tasks, stopping early when the queue drains. It returns
// the number fired.
func (s *ManualScheduler) Run(n int) int {
	fired := 0
	for fired < n && s.Fire() {
		fired++
	}
	return fired
}
