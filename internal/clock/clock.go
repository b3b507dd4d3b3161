package clock

import "time"

// Clock supplies the current time. The real implementation is used in
// production; Frozen lets tests freeze and travel.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// New returns the wall clock, normalized to UTC.
func New() Clock {
	return realClock{}
}

// Frozen is a settable clock for tests.
type Frozen struct {
	current time.Time
}

func NewFrozen(at time.Time) *Frozen {
	return &Frozen{current: at.UTC()}
}

func (f *Frozen) Now() time.Time {
	return f.current
}

// Travel advances (or rewinds) the frozen time by d.
func (f *Frozen) Travel(d time.Duration) {
	f.current = f.current.Add(d)
}

// Set moves the frozen time to at.
func (f *Frozen) Set(at time.Time) {
	f.current = at.UTC()
}
