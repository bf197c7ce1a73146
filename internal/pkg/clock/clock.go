package clock

import "time"

// Clock is injected wherever the current time matters, so tests can pin it.
type Clock interface {
	Now() time.Time
}

func New() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
