package gateway

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mcdev12/courtside/go/internal/game"
	"github.com/mcdev12/courtside/go/internal/protocol"
)

const maxNicknameRunes = 24

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrInvalidMove    = errors.New("move requires a finite y")
)

// Handler receives sanitized client intents. match.Service implements it.
type Handler interface {
	Connect(connID string)
	Join(connID, nickname string)
	ToggleReady(connID string)
	Move(connID string, y float64)
	Disconnect(connID string)
}

// NameSource supplies nicknames for players who join without one.
type NameSource interface {
	Next() string
}

// Router decodes client frames and forwards them to a Handler.
type Router struct {
	handler Handler
	names   NameSource
}

func NewRouter(handler Handler, names NameSource) *Router {
	return &Router{handler: handler, names: names}
}

// Dispatch decodes one frame from connID. Frames that fail to decode or carry
// an unknown type return an error and reach nothing.
func (r *Router) Dispatch(connID string, frame []byte) error {
	env, err := protocol.DecodeEnvelope(frame)
	if err != nil {
		return err
	}

	switch env.Type {
	case protocol.IntentJoinGame:
		req, err := protocol.DecodePayload[protocol.JoinGame](env)
		if err != nil {
			return err
		}
		r.handler.Join(connID, r.nickname(req.Nickname))

	case protocol.IntentToggleReady:
		r.handler.ToggleReady(connID)

	case protocol.IntentMove:
		req, err := protocol.DecodePayload[protocol.Move](env)
		if err != nil {
			return err
		}
		if req.Y == nil || math.IsNaN(*req.Y) || math.IsInf(*req.Y, 0) {
			return ErrInvalidMove
		}
		r.handler.Move(connID, game.ClampPaddleY(*req.Y))

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
	return nil
}

// nickname trims the requested name, substitutes a generated one when it is
// blank and caps the length.
func (r *Router) nickname(requested string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = r.names.Next()
	}
	if utf8.RuneCountInString(name) > maxNicknameRunes {
		name = string([]rune(name)[:maxNicknameRunes])
	}
	return name
}
