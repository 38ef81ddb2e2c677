package engine

import "time"

// Clock abstracts wall-clock time so rule evaluation and recurrence can be
// tested at a fixed instant.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
