package protocol

import (
	"errors"
	"testing"

	"github.com/mcdev12/courtside/go/internal/game"
)

func TestEncodeProducesTypedEnvelope(t *testing.T) {
	b, err := Encode(EventQueueUpdate, QueueUpdatePayload{Position: 2, Total: 5})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"type":"queueUpdate","data":{"position":2,"total":5}}`
	if string(b) != want {
		t.Fatalf("encoded = %s, want %s", b, want)
	}
}

func TestEncodeGameOver(t *testing.T) {
	b, err := Encode(EventGameOver, GameOverPayload{Winner: game.TeamRight, Score: game.Score{Left: 3, Right: 10}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"type":"gameOver","data":{"winner":"right","score":{"left":3,"right":10}}}`
	if string(b) != want {
		t.Fatalf("encoded = %s, want %s", b, want)
	}
}

func TestEncodeRejectsEmptyType(t *testing.T) {
	if _, err := Encode("", struct{}{}); !errors.Is(err, ErrEmptyEnvelope) {
		t.Fatalf("err = %v, want ErrEmptyEnvelope", err)
	}
}

func TestDecodeIntents(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"move","data":{"y":412.5}}`))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	mv, err := DecodePayload[Move](env)
	if err != nil {
		t.Fatalf("decode move: %v", err)
	}
	if mv.Y == nil || *mv.Y != 412.5 {
		t.Fatalf("move y = %v, want 412.5", mv.Y)
	}

	env, err = DecodeEnvelope([]byte(`{"type":"joinGame"}`))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	join, err := DecodePayload[JoinGame](env)
	if err != nil {
		t.Fatalf("decode join without data: %v", err)
	}
	if join.Nickname != "" {
		t.Fatalf("nickname = %q, want empty", join.Nickname)
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "not json", in: "hello"},
		{name: "no type", in: `{"data":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEnvelope([]byte(tt.in)); err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
		})
	}
}

func TestDecodePayloadTypeMismatch(t *testing.T) {
	env := Envelope{Type: IntentMove, Data: []byte(`{"y":"up"}`)}
	if _, err := DecodePayload[Move](env); err == nil {
		t.Fatalf("expected error decoding string y")
	}
}
