package match

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/protocol"
)

// LobbyTimer is the countdown that lets fewer than four players start a
// match. At most one countdown task is live at a time.
type LobbyTimer struct {
	sched     Scheduler
	out       Broadcaster
	duration  int
	countdown int
	task      Task
	onExpire  func()
}

func NewLobbyTimer(sched Scheduler, out Broadcaster, seconds int, onExpire func()) *LobbyTimer {
	return &LobbyTimer{
		sched:    sched,
		out:      out,
		duration: seconds,
		onExpire: onExpire,
	}
}

// Start resets the countdown to its full duration and begins ticking once a
// second. A running countdown is replaced.
func (t *LobbyTimer) Start() {
	if t.task != nil {
		t.task.Stop()
	}
	t.countdown = t.duration
	t.out.Broadcast(protocol.EventLobbyTimer, protocol.LobbyTimerPayload{Countdown: t.countdown})
	t.task = t.sched.Every(time.Second, t.Tick)

	log.Info().Int("countdown", t.duration).Msg("lobby timer started")
}

// Stop cancels the countdown and publishes zero. It does nothing when idle.
func (t *LobbyTimer) Stop() {
	if t.task == nil {
		return
	}
	t.task.Stop()
	t.task = nil
	t.countdown = 0
	t.out.Broadcast(protocol.EventLobbyTimer, protocol.LobbyTimerPayload{Countdown: 0})
}

// Tick decrements the countdown. Reaching zero stops the timer and fires the
// expiry callback.
func (t *LobbyTimer) Tick() {
	if t.task == nil {
		return
	}
	t.countdown--
	t.out.Broadcast(protocol.EventLobbyTimer, protocol.LobbyTimerPayload{Countdown: t.countdown})
	if t.countdown > 0 {
		return
	}
	t.Stop()
	log.Info().Msg("lobby timer expired")
	if t.onExpire != nil {
		t.onExpire()
	}
}

func (t *LobbyTimer) Running() bool {
	return t.task != nil
}

func (t *LobbyTimer) Countdown() int {
	return t.countdown
}
