package world

import "time"

// Clock provides monotonic seconds since construction. time.Since reads
// the monotonic component of the start time, so wall-clock adjustments
// never move it backwards.
type Clock struct {
	start time.Time
}

func NewClock() *Clock {
	return &Clock{start: time.Now()}
}

func (c *Clock) Now() float64 {
	return time.Since(c.start).Seconds()
}
