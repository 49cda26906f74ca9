package playback

import (
	"errors"
	"math"
	"time"
)

// Default pacing: each tick fills 2% of a story, one tick every 200ms.
const (
	DefaultStep     = 0.02
	DefaultInterval = 200 * time.Millisecond
)

// Policy controls how fast a story's progress bar fills.
type Policy struct {
	// Step is the fraction of a story added per tick, in (0, 1].
	Step float64
	// Interval is the delay between scheduled ticks.
	Interval time.Duration
}

// DefaultPolicy returns the stock pacing.
func DefaultPolicy() Policy {
	return Policy{Step: DefaultStep, Interval: DefaultInterval}
}

// Validate checks the policy for errors.
func (p Policy) Validate() error {
	if p.Step <= 0 || p.Step > 1 || math.IsNaN(p.Step) {
		return errors.New("step must be in (0, 1]")
	}
	if p.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	return nil
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.Step <= 0 || p.Step > 1 || math.IsNaN(p.Step) {
		p.Step = d.Step
	}
	if p.Interval <= 0 {
		p.Interval = d.Interval
	}
	return p
}

// TicksPerSegment returns how many ticks it takes to fill one story.
// Progress is counted in whole ticks so repeated float addition cannot
// leave a bar stuck just short of full.
func (p Policy) TicksPerSegment() int {
	if p.Step <= 0 {
		return 1
	}
	n := int(math.Ceil(1/p.Step - 1e-9))
	if n < 1 {
		return 1
	}
	return n
}

// SegmentDuration returns the wall-clock time one story is shown.
func (p Policy) SegmentDuration() time.Duration {
	return time.Duration(p.TicksPerSegment()) * p.Interval
}

// fraction converts a tick count into an elapsed fraction in [0, 1].
func (p Policy) fraction(ticks int) float64 {
	return math.Min(1, float64(ticks)*p.Step)
}
