package matchfeed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mcdev12/courtside/go/internal/game"
	"github.com/mcdev12/courtside/go/internal/match"
	"github.com/mcdev12/courtside/go/internal/protocol"
)

type fakePublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []Message
	notify   chan Message
}

func newFakePublisher(failures int) *fakePublisher {
	return &fakePublisher{failures: failures, notify: make(chan Message, 16)}
}

func (f *fakePublisher) Publish(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("nats unavailable")
	}
	f.sent = append(f.sent, msg)
	f.notify <- msg
	return nil
}

func runWorker(t *testing.T, w *Worker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitMessage(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("no message published")
		return Message{}
	}
}

func TestWorkerPublishesEncodedEvent(t *testing.T) {
	pub := newFakePublisher(0)
	w := NewWorker(pub, DefaultConfig())
	runWorker(t, w)

	ev := match.LifecycleEvent{
		Kind:    match.MatchCompleted,
		MatchID: "m-1",
		At:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Roster: []protocol.LobbyPlayer{
			{Slot: game.Left1, Nickname: "ada", Ready: true, Team: game.TeamLeft},
		},
		Score:  game.Score{Left: 10, Right: 4},
		Winner: game.TeamLeft,
	}
	w.Publish(ev)

	msg := waitMessage(t, pub.notify)
	if msg.Kind != match.MatchCompleted || msg.MatchID != "m-1" || msg.ID == "" {
		t.Fatalf("message = %+v", msg)
	}

	var got struct {
		EventID string `json:"event_id"`
		match.LifecycleEvent
	}
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.EventID != msg.ID {
		t.Fatalf("event_id %q, header id %q", got.EventID, msg.ID)
	}
	if diff := cmp.Diff(ev, got.LifecycleEvent); diff != "" {
		t.Fatalf("payload (-want +got):\n%s", diff)
	}
}

func TestWorkerRetriesWithSameID(t *testing.T) {
	pub := newFakePublisher(2)
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	w := NewWorker(pub, cfg)
	runWorker(t, w)

	w.Publish(match.LifecycleEvent{Kind: match.MatchStarted, MatchID: "m-2"})
	msg := waitMessage(t, pub.notify)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.calls != 3 {
		t.Fatalf("publish attempts = %d, want 3", pub.calls)
	}
	if msg.MatchID != "m-2" {
		t.Fatalf("message = %+v", msg)
	}
}

func TestWorkerDropsWhenBufferFull(t *testing.T) {
	pub := newFakePublisher(0)
	w := NewWorker(pub, Config{BufferSize: 1, MaxRetries: 0})

	// Not running, so the second event has nowhere to go.
	w.Publish(match.LifecycleEvent{Kind: match.MatchStarted, MatchID: "a"})
	w.Publish(match.LifecycleEvent{Kind: match.MatchAborted, MatchID: "b"})

	if len(w.events) != 1 {
		t.Fatalf("buffered = %d, want 1", len(w.events))
	}
	if st := w.Stats(); st.Dropped != 1 || st.Published != 0 || !st.Connected {
		t.Fatalf("stats = %+v", st)
	}
	runWorker(t, w)
	if msg := waitMessage(t, pub.notify); msg.MatchID != "a" {
		t.Fatalf("published %q, want the first event", msg.MatchID)
	}
}
