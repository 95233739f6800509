package match

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/courtside/go/internal/protocol"
)

type sent struct {
	To      string // empty for broadcasts
	Type    protocol.EventType
	Payload any
}

// recorder is a Broadcaster that keeps every event in order.
type recorder struct {
	events []sent
}

func (r *recorder) Broadcast(t protocol.EventType, payload any) {
	r.events = append(r.events, sent{Type: t, Payload: payload})
}

func (r *recorder) SendTo(connID string, t protocol.EventType, payload any) {
	r.events = append(r.events, sent{To: connID, Type: t, Payload: payload})
}

func (r *recorder) ofType(t protocol.EventType) []sent {
	var out []sent
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) to(connID string, t protocol.EventType) []sent {
	var out []sent
	for _, e := range r.events {
		if e.To == connID && e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.events = nil
}

// manualScheduler runs tasks only when the test says so.
type manualScheduler struct {
	every []*manualTask
	after []*manualTask
}

type manualTask struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (t *manualTask) Stop() {
	t.stopped = true
}

func (s *manualScheduler) Every(d time.Duration, fn func()) Task {
	t := &manualTask{d: d, fn: fn}
	s.every = append(s.every, t)
	return t
}

func (s *manualScheduler) After(d time.Duration, fn func()) Task {
	t := &manualTask{d: d, fn: fn}
	s.after = append(s.after, t)
	return t
}

// advanceSeconds fires every live repeating task once per second.
func (s *manualScheduler) advanceSeconds(n int) {
	for i := 0; i < n; i++ {
		for _, t := range append([]*manualTask(nil), s.every...) {
			if !t.stopped {
				t.fn()
			}
		}
	}
}

// runDelayed fires every pending one-shot task.
func (s *manualScheduler) runDelayed() {
	pending := s.after
	s.after = nil
	for _, t := range pending {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

func (s *manualScheduler) liveRepeating() int {
	n := 0
	for _, t := range s.every {
		if !t.stopped {
			n++
		}
	}
	return n
}

type recordingFeed struct {
	events []LifecycleEvent
}

func (f *recordingFeed) Publish(ev LifecycleEvent) {
	f.events = append(f.events, ev)
}

type harness struct {
	m     *Manager
	out   *recorder
	sched *manualScheduler
	feed  *recordingFeed
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		out:   &recorder{},
		sched: &manualScheduler{},
		feed:  &recordingFeed{},
	}
	h.m = NewManager(DefaultConfig(), h.sched, h.out,
		WithFeed(h.feed),
		WithClock(clockwork.NewFakeClock()),
		WithRand(rand.New(rand.NewPCG(7, 11))),
	)
	return h
}

func (h *harness) join(ids ...string) {
	for _, id := range ids {
		h.m.OnConnect(id)
		h.m.OnJoin(id, "nick-"+id)
	}
}

func (h *harness) readyAll() {
	for _, p := range h.m.ActivePlayers() {
		if !p.Ready {
			h.m.OnToggleReady(p.ConnID)
		}
	}
}

func (h *harness) phases() []string {
	var out []string
	for _, e := range h.out.ofType(protocol.EventStateChange) {
		if e.To == "" {
			out = append(out, e.Payload.(protocol.StateChangePayload).State)
		}
	}
	return out
}
