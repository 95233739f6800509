package match

import "time"

// Task is a scheduled callback that can be cancelled. Stop is idempotent and
// must be called from the loop goroutine.
type Task interface {
	Stop()
}

// Scheduler runs callbacks on the session's loop goroutine, either
// repeatedly or once after a delay. A callback never runs after its task
// has been stopped.
type Scheduler interface {
	Every(d time.Duration, fn func()) Task
	After(d time.Duration, fn func()) Task
}
