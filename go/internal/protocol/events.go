package protocol

import "github.com/mcdev12/courtside/go/internal/game"

// EventType names an outbound server event.
type EventType string

const (
	EventStateChange    EventType = "stateChange"
	EventLobbyTimer     EventType = "lobbyTimer"
	EventLobbyUpdate    EventType = "lobbyUpdate"
	EventPlayerAssigned EventType = "playerAssigned"
	EventQueueUpdate    EventType = "queueUpdate"
	EventGameStart      EventType = "gameStart"
	EventGameState      EventType = "gameState"
	EventScore          EventType = "score"
	EventGameOver       EventType = "gameOver"
)

// Intent types sent by clients.
const (
	IntentJoinGame    = "joinGame"
	IntentToggleReady = "toggleReady"
	IntentMove        = "move"
)

// JoinGame asks to be queued. Nickname is optional.
type JoinGame struct {
	Nickname string `json:"nickname,omitempty"`
}

// Move sets the sender's paddle offset. Y is a pointer so a missing field can
// be told apart from zero.
type Move struct {
	Y *float64 `json:"y"`
}

type StateChangePayload struct {
	State string `json:"state"`
}

type LobbyTimerPayload struct {
	Countdown int `json:"countdown"`
}

type LobbyPlayer struct {
	Slot     game.Slot `json:"slot"`
	Nickname string    `json:"nickname"`
	Ready    bool      `json:"ready"`
	Team     game.Team `json:"team"`
}

type LobbyUpdatePayload struct {
	ReadyCount   int           `json:"readyCount"`
	TotalPlayers int           `json:"totalPlayers"`
	Players      []LobbyPlayer `json:"players"`
}

type PlayerAssignedPayload struct {
	Slot   game.Slot   `json:"slot"`
	Paddle game.Paddle `json:"paddle"`
}

type QueueUpdatePayload struct {
	Position int `json:"position"`
	Total    int `json:"total"`
}

type GameStartPayload struct{}

type GameStatePayload struct {
	Ball        game.Ball                 `json:"ball"`
	Paddles     map[game.Slot]game.Paddle `json:"paddles"`
	Score       game.Score                `json:"score"`
	ActiveSlots []game.Slot               `json:"activeSlots"`
}

type GameOverPayload struct {
	Winner game.Team  `json:"winner"`
	Score  game.Score `json:"score"`
}
