package search

import "time"

// Timer is a pending scheduled call.
type Timer interface {
	// Stop cancels the call; false means it already fired or was stopped.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WallClock schedules on real time.
func WallClock() Scheduler { return wallClock{} }
