package app

import "time"

// Task is a scheduled callback that can be stopped before it fires.
type Task interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay. Callbacks run on their own goroutine;
// the Engine serializes them behind its lock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// SystemScheduler schedules on the runtime timers.
var SystemScheduler Scheduler = systemScheduler{}
