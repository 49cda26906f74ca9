package playback

// Observer receives the engine's notifications. Callbacks run synchronously
// with the engine locked; implementations must not call back into the Engine.
type Observer interface {
	OnSegmentChanged(index int)
	OnTimelineEnded()
	OnClosed()
}

// ObserverFuncs adapts plain functions to the Observer interface. Nil
// fields are ignored.
type ObserverFuncs struct {
	SegmentChanged func(index int)
	TimelineEnded  func()
	Closed         func()
}

func (o ObserverFuncs) OnSegmentChanged(index int) {
	if o.SegmentChanged != nil {
		o.SegmentChanged(index)
	}
}

func (o ObserverFuncs) OnTimelineEnded() {
	if o.TimelineEnded != nil {
		o.TimelineEnded()
	}
}

func (o ObserverFuncs) OnClosed() {
	if o.Closed != nil {
		o.Closed()
	}
}

type nopObserver struct{}

func (nopObserver) OnSegmentChanged(int) {}
func (nopObserver) OnTimelineEnded()     {}
func (nopObserver) OnClosed()            {}
