package match

import (
	"time"

	"github.com/mcdev12/courtside/go/internal/game"
	"github.com/mcdev12/courtside/go/internal/protocol"
)

// Broadcaster delivers outbound events to clients. Implementations must
// serialise payloads before returning; the Manager reuses its state.
type Broadcaster interface {
	Broadcast(t protocol.EventType, payload any)
	SendTo(connID string, t protocol.EventType, payload any)
}

// LifecycleKind classifies match lifecycle events.
type LifecycleKind string

const (
	MatchStarted   LifecycleKind = "started"
	MatchCompleted LifecycleKind = "completed"
	MatchAborted   LifecycleKind = "aborted"
)

// LifecycleEvent describes a match starting or ending, for consumers outside
// the game protocol.
type LifecycleEvent struct {
	Kind    LifecycleKind          `json:"kind"`
	MatchID string                 `json:"match_id"`
	At      time.Time              `json:"at"`
	Roster  []protocol.LobbyPlayer `json:"roster"`
	Score   game.Score             `json:"score"`
	Winner  game.Team              `json:"winner,omitempty"`
}

// Feed receives lifecycle events. Publish is called on the loop goroutine and
// must not block.
type Feed interface {
	Publish(ev LifecycleEvent)
}

type nopFeed struct{}

func (nopFeed) Publish(LifecycleEvent) {}
