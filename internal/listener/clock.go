package listener

import "time"

// Clock abstracts wall time and timer scheduling so restart debounce logic
// is testable without real sleeps.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is one armed deferred callback.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock returns the wall-clock implementation used outside tests.
func SystemClock() Clock { return systemClock{} }
