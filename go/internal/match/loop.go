package match

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const inboxSize = 256

// Loop is the single goroutine that owns the session. Client intents,
// scheduled callbacks and the physics ticker all run here, one at a time.
type Loop struct {
	clock    clockwork.Clock
	tickRate int
	inbox    chan func()
	done     chan struct{}
}

func NewLoop(clock clockwork.Clock, tickRate int) *Loop {
	return &Loop{
		clock:    clock,
		tickRate: tickRate,
		inbox:    make(chan func(), inboxSize),
		done:     make(chan struct{}),
	}
}

// Run processes submitted work and calls tick at the configured rate until
// ctx is cancelled. It must be called once.
func (l *Loop) Run(ctx context.Context, tick func()) error {
	ticker := l.clock.NewTicker(time.Second / time.Duration(l.tickRate))
	defer ticker.Stop()
	defer close(l.done)

	log.Info().Int("tick_rate", l.tickRate).Msg("session loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("session loop shutting down")
			return ctx.Err()
		case fn := <-l.inbox:
			fn()
		case <-ticker.Chan():
			tick()
		}
	}
}

// Submit queues fn to run on the loop goroutine. It reports false if the loop
// has already stopped.
func (l *Loop) Submit(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.inbox <- fn:
		return true
	case <-l.done:
		return false
	}
}

// loopTask is owned by the loop goroutine; stopped is only read and written there.
type loopTask struct {
	stopped bool
	quit    chan struct{}
}

func newLoopTask() *loopTask {
	return &loopTask{quit: make(chan struct{})}
}

func (t *loopTask) Stop() {
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.quit)
}

// post hands a fire to the loop. The stopped check happens on the loop, so a
// fire already in the inbox when Stop runs is discarded.
func (l *Loop) post(t *loopTask, fn func()) {
	l.Submit(func() {
		if !t.stopped {
			fn()
		}
	})
}

// Every runs fn on the loop every d until the returned task is stopped.
func (l *Loop) Every(d time.Duration, fn func()) Task {
	t := newLoopTask()
	ticker := l.clock.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				l.post(t, fn)
			case <-t.quit:
				return
			case <-l.done:
				return
			}
		}
	}()
	return t
}

// After runs fn on the loop once, d from now, unless the task is stopped first.
func (l *Loop) After(d time.Duration, fn func()) Task {
	t := newLoopTask()
	timer := l.clock.NewTimer(d)
	go func() {
		select {
		case <-timer.Chan():
			l.post(t, fn)
		case <-t.quit:
			stopAndDrainTimer(timer)
		case <-l.done:
			stopAndDrainTimer(timer)
		}
	}()
	return t
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
