package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyEnvelope is returned when a frame carries no bytes or no type.
var ErrEmptyEnvelope = errors.New("empty envelope")

// Envelope is the frame every message travels in, in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode wraps payload in an envelope of the given type.
func Encode(t EventType, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode: %w", ErrEmptyEnvelope)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return json.Marshal(Envelope{Type: string(t), Data: data})
}

// DecodeEnvelope parses a raw frame without touching its payload.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyEnvelope
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, ErrEmptyEnvelope
	}
	return env, nil
}

// DecodePayload unmarshals the envelope data into T. A missing or null
// payload yields the zero value, since several intents carry no data.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return out, nil
}
