package matchfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/match"
)

// Message is one lifecycle event ready for the wire.
type Message struct {
	ID      string
	Kind    match.LifecycleKind
	MatchID string
	Data    []byte
}

// Publisher delivers messages to the feed backend.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

type Config struct {
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		BufferSize: 64,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Stats summarises feed delivery for the /stats endpoint.
type Stats struct {
	Published     uint64    `json:"published"`
	Dropped       uint64    `json:"dropped"`
	Failed        uint64    `json:"failed"`
	LastPublished time.Time `json:"last_published,omitzero"`
	Connected     bool      `json:"connected"`
}

// connectionChecker is implemented by publishers that hold a live connection.
type connectionChecker interface {
	Connected() bool
}

// Worker implements match.Feed. Publish only enqueues; a separate goroutine
// started by Run does the network I/O.
type Worker struct {
	publisher Publisher
	config    Config
	events    chan match.LifecycleEvent

	published     atomic.Uint64
	dropped       atomic.Uint64
	failed        atomic.Uint64
	lastPublished atomic.Int64 // unix nanos
}

func NewWorker(publisher Publisher, cfg Config) *Worker {
	return &Worker{
		publisher: publisher,
		config:    cfg,
		events:    make(chan match.LifecycleEvent, cfg.BufferSize),
	}
}

// Publish hands an event to the worker without blocking. The event is dropped
// when the buffer is full.
func (w *Worker) Publish(ev match.LifecycleEvent) {
	select {
	case w.events <- ev:
	default:
		w.dropped.Add(1)
		log.Warn().
			Str("kind", string(ev.Kind)).
			Str("match_id", ev.MatchID).
			Msg("match feed buffer full, dropping event")
	}
}

// Run publishes queued events until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log.Info().Int("buffer", w.config.BufferSize).Msg("match feed worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("pending", len(w.events)).Msg("match feed worker stopped")
			return ctx.Err()
		case ev := <-w.events:
			msg, err := encode(ev)
			if err != nil {
				log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("failed to encode match event")
				continue
			}
			err = w.publishWithRetry(ctx, msg)
			switch {
			case err == nil:
				w.published.Add(1)
				w.lastPublished.Store(time.Now().UnixNano())
			case !errors.Is(err, context.Canceled):
				w.failed.Add(1)
				log.Error().
					Err(err).
					Str("event_id", msg.ID).
					Str("kind", string(msg.Kind)).
					Msg("failed to publish match event")
			}
		}
	}
}

// Stats reports delivery counters. Connected is true unless the publisher
// reports a lost connection.
func (w *Worker) Stats() Stats {
	st := Stats{
		Published: w.published.Load(),
		Dropped:   w.dropped.Load(),
		Failed:    w.failed.Load(),
		Connected: true,
	}
	if ns := w.lastPublished.Load(); ns != 0 {
		st.LastPublished = time.Unix(0, ns).UTC()
	}
	if cc, ok := w.publisher.(connectionChecker); ok {
		st.Connected = cc.Connected()
	}
	return st
}

func (w *Worker) publishWithRetry(ctx context.Context, msg Message) error {
	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := w.publisher.Publish(ctx, msg); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("event_id", msg.ID).
				Int("attempt", attempt+1).
				Msg("failed to publish match event, retrying")
			continue
		}
		return nil
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func encode(ev match.LifecycleEvent) (Message, error) {
	id := uuid.New().String()
	data, err := json.Marshal(struct {
		EventID string `json:"event_id"`
		match.LifecycleEvent
	}{EventID: id, LifecycleEvent: ev})
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s event: %w", ev.Kind, err)
	}
	return Message{ID: id, Kind: ev.Kind, MatchID: ev.MatchID, Data: data}, nil
}
